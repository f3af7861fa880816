package deductions

import "context"

type StoreAPI interface {
	List(ctx context.Context) ([]Deduction, error)
	Get(ctx context.Context, id string) (Deduction, error)
	GetByCode(ctx context.Context, code string) (Deduction, error)
	GetByName(ctx context.Context, name string) (Deduction, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, in Input) (Deduction, error)
	Update(ctx context.Context, id string, in Input) (Deduction, error)
	Delete(ctx context.Context, id string) (bool, error)
}
