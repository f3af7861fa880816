package deductions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"erp/internal/platform/db"
)

type Store struct {
	DB db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{DB: q}
}

const selectColumns = `id, code, name, percentage::text, created_at, updated_at`

func (s *Store) List(ctx context.Context) ([]Deduction, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT `+selectColumns+`
    FROM deductions
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Deduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Deduction, error) {
	return s.getBy(ctx, "id", id)
}

func (s *Store) GetByCode(ctx context.Context, code string) (Deduction, error) {
	return s.getBy(ctx, "code", code)
}

func (s *Store) GetByName(ctx context.Context, name string) (Deduction, error) {
	return s.getBy(ctx, "name", name)
}

func (s *Store) getBy(ctx context.Context, column, value string) (Deduction, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT `+selectColumns+`
    FROM deductions
    WHERE `+column+` = $1
  `, value)
	d, err := scanDeduction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Deduction{}, ErrNotFound
	}
	return d, err
}

func (s *Store) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return s.exists(ctx, "code", code)
}

func (s *Store) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, "name", name)
}

func (s *Store) exists(ctx context.Context, column, value string) (bool, error) {
	var count int
	if err := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, "SELECT COUNT(1) FROM deductions WHERE "+column+" = $1", value).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Create(ctx context.Context, in Input) (Deduction, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    INSERT INTO deductions (code, name, percentage)
    VALUES ($1,$2,$3::numeric)
    RETURNING `+selectColumns,
		in.Code, in.Name, in.Percentage.String())
	d, err := scanDeduction(row)
	if err != nil {
		return Deduction{}, translateError(err)
	}
	return d, nil
}

func (s *Store) Update(ctx context.Context, id string, in Input) (Deduction, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    UPDATE deductions
    SET code = $1, name = $2, percentage = $3::numeric, updated_at = now()
    WHERE id = $4
    RETURNING `+selectColumns,
		in.Code, in.Name, in.Percentage.String(), id)
	d, err := scanDeduction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Deduction{}, ErrNotFound
	}
	if err != nil {
		return Deduction{}, translateError(err)
	}
	return d, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := db.QueryerFromContext(ctx, s.DB).Exec(ctx, "DELETE FROM deductions WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanDeduction(row pgx.Row) (Deduction, error) {
	var d Deduction
	var percentage string
	if err := row.Scan(&d.ID, &d.Code, &d.Name, &percentage, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return Deduction{}, err
	}
	parsed, err := decimal.NewFromString(percentage)
	if err != nil {
		return Deduction{}, fmt.Errorf("deduction %s: parse percentage %q: %w", d.ID, percentage, err)
	}
	d.Percentage = parsed
	return d, nil
}

func translateError(err error) error {
	constraint, ok := db.ConstraintViolated(err, db.UniqueViolation)
	if !ok {
		return err
	}
	switch constraint {
	case "deductions_name_key":
		return ErrDuplicateName
	default:
		return ErrDuplicateCode
	}
}
