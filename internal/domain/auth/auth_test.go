package auth

import (
	"errors"
	"testing"
	"time"
)

func TestAuthorize(t *testing.T) {
	a := NewAuthorizer(RolePermissions)

	if err := a.Authorize(RoleManager, ActionPayrollProcess); err != nil {
		t.Fatalf("expected manager to process payroll, got %v", err)
	}
	if err := a.Authorize(RoleAdmin, ActionPayrollProcess); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected admin to be refused processing, got %v", err)
	}
	if err := a.Authorize(RoleAdmin, ActionPayrollApprove); err != nil {
		t.Fatalf("expected admin to approve, got %v", err)
	}
	if err := a.Authorize(RoleManager, ActionPayrollApprove); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected manager to be refused approval, got %v", err)
	}
	if err := a.Authorize(RoleEmployee, ActionPayrollReadOwn); err != nil {
		t.Fatalf("expected employee to read own payslips, got %v", err)
	}
	if err := a.Authorize(RoleEmployee, ActionDeductionsWrite); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected employee to be refused deduction writes, got %v", err)
	}
	if err := a.Authorize("ROLE_UNKNOWN", ActionDeductionsList); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected unknown role to be refused, got %v", err)
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken(secret, "alice@example.com", Claims{EmployeeID: "e1", Role: RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	user := parsed.User()
	if user.EmployeeID != "e1" || user.Role != RoleEmployee || user.Subject != "alice@example.com" {
		t.Fatalf("claims mismatch: %+v", user)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseExpiredToken(t *testing.T) {
	token, err := GenerateToken("s", "bob", Claims{Role: RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("s", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
