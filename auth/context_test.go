package auth

import (
	"context"
	"testing"
)

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	if got := PrincipalFromContext(ctx); got != nil {
		t.Errorf("PrincipalFromContext(empty) = %+v, want nil", got)
	}
	if got := PrincipalIDFromContext(ctx); got != "" {
		t.Errorf("PrincipalIDFromContext(empty) = %q, want empty", got)
	}

	p := testPrincipal("user-1")
	ctx = WithPrincipal(ctx, p)

	if got := PrincipalFromContext(ctx); got != p {
		t.Errorf("PrincipalFromContext() = %+v, want %+v", got, p)
	}
	if got := PrincipalIDFromContext(ctx); got != "user-1" {
		t.Errorf("PrincipalIDFromContext() = %q, want user-1", got)
	}
}
