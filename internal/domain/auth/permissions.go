package auth

import (
	"errors"
	"fmt"
)

const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleManager  = "ROLE_MANAGER"
	RoleEmployee = "ROLE_EMPLOYEE"
)

const (
	ActionPayrollProcess    = "payroll.process"
	ActionPayrollApprove    = "payroll.approve"
	ActionPayrollReadPeriod = "payroll.read_period"
	ActionPayrollReadOwn    = "payroll.read_own"
	ActionDeductionsList    = "deductions.list"
	ActionDeductionsRead    = "deductions.read"
	ActionDeductionsWrite   = "deductions.write"
	ActionMessagesRead      = "messages.read"
	ActionMessagesResend    = "messages.resend"
	ActionAuditRead         = "audit.read"
	ActionReportsRead       = "reports.read"
)

var ErrForbidden = errors.New("insufficient permissions")

var RolePermissions = map[string][]string{
	RoleEmployee: {
		ActionPayrollReadOwn,
		ActionDeductionsList,
	},
	RoleManager: {
		ActionPayrollProcess,
		ActionPayrollReadPeriod,
		ActionDeductionsList,
		ActionDeductionsRead,
		ActionDeductionsWrite,
		ActionMessagesRead,
		ActionReportsRead,
	},
	RoleAdmin: {
		ActionPayrollApprove,
		ActionPayrollReadPeriod,
		ActionDeductionsList,
		ActionDeductionsRead,
		ActionDeductionsWrite,
		ActionMessagesRead,
		ActionMessagesResend,
		ActionAuditRead,
		ActionReportsRead,
	},
}

// Authorizer answers whether a role may perform an action.
type Authorizer struct {
	allowed map[string]map[string]struct{}
}

func NewAuthorizer(permissions map[string][]string) *Authorizer {
	allowed := make(map[string]map[string]struct{}, len(permissions))
	for role, actions := range permissions {
		set := make(map[string]struct{}, len(actions))
		for _, action := range actions {
			set[action] = struct{}{}
		}
		allowed[role] = set
	}
	return &Authorizer{allowed: allowed}
}

func (a *Authorizer) Authorize(role, action string) error {
	if _, ok := a.allowed[role][action]; ok {
		return nil
	}
	return fmt.Errorf("%w: %s cannot %s", ErrForbidden, role, action)
}
