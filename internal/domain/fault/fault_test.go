package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("disk on fire")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"auth", Auth("invalid email or password"), KindAuth},
		{"authz", Authz("admin only"), KindAuthz},
		{"unauthenticated", Unauthenticated(), KindAuthz},
		{"conflict", Conflict("taken"), KindConflict},
		{"not found", NotFound("missing"), KindNotFound},
		{"dependency", Dependency(cause), KindDependency},
		{"internal", Internal("boom", cause), KindInternal},
		{"plain error", cause, KindInternal},
		{"wrapped", fmt.Errorf("outer: %w", Conflict("taken")), KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency(cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	fe, ok := As(err)
	if !ok {
		t.Fatal("expected *Error")
	}
	if fe.Message != "service temporarily unavailable" {
		t.Errorf("Message = %q", fe.Message)
	}
}

func TestValidation_CarriesFields(t *testing.T) {
	err := Validation("invalid input",
		FieldError{Field: "email", Message: "must be a valid email"},
		FieldError{Field: "password", Message: "must be at least 6 characters"},
	)
	fe, _ := As(err)
	if len(fe.Fields) != 2 {
		t.Fatalf("Fields = %d, want 2", len(fe.Fields))
	}
	if fe.Fields[0].Field != "email" {
		t.Errorf("Fields[0].Field = %q", fe.Fields[0].Field)
	}
}

func TestUnauthenticated_Flag(t *testing.T) {
	fe, _ := As(Unauthenticated())
	if !fe.Unauthenticated {
		t.Error("expected Unauthenticated flag")
	}
	fe, _ = As(Authz("admin only"))
	if fe.Unauthenticated {
		t.Error("plain Authz must not be flagged unauthenticated")
	}
}

func TestIs(t *testing.T) {
	if Is(nil, KindInternal) {
		t.Error("nil error must not match any kind")
	}
	if !Is(NotFound("x"), KindNotFound) {
		t.Error("expected match")
	}
}
