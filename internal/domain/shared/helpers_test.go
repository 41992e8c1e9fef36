package shared_test

import (
	"errors"
	"strings"
	"testing"

	"FundChain/internal/domain/shared"
	appErrors "FundChain/internal/errors"
)

func TestNormalizeAccount(t *testing.T) {
	t.Parallel()

	got, err := shared.NormalizeAccount("creator", "  0xAbC  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0xAbC" {
		t.Fatalf("expected trimmed identifier with case preserved, got %q", got)
	}

	for _, bad := range []string{"", "   ", strings.Repeat("a", 129)} {
		_, err := shared.NormalizeAccount("creator", bad)
		if !errors.Is(err, appErrors.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", bad, err)
		}
	}
}

func TestIsUniqueConstraintError(t *testing.T) {
	t.Parallel()

	if shared.IsUniqueConstraintError(nil) {
		t.Fatalf("nil is not a constraint error")
	}
	if !shared.IsUniqueConstraintError(errors.New(`ERROR: duplicate key value violates unique constraint "campaigns_pkey" (SQLSTATE 23505)`)) {
		t.Fatalf("expected postgres duplicate key to be detected")
	}
}
