package authz

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/goliatone/go-portal/internal/domain"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

type principalKey struct{}

// WithPrincipal stores the caller on ctx.
func WithPrincipal(ctx context.Context, principal interfaces.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom returns the caller stored on ctx. Anonymous callers get the
// zero Principal.
func PrincipalFrom(ctx context.Context) interfaces.Principal {
	if ctx == nil {
		return interfaces.Principal{}
	}
	principal, _ := ctx.Value(principalKey{}).(interfaces.Principal)
	return principal
}

// RequireAdmin fails with a forbidden error unless principal is an admin.
func RequireAdmin(principal interfaces.Principal, action string) error {
	if principal.IsAdmin() {
		return nil
	}
	return domain.Forbidden(action)
}

// SecretMatches compares a presented setup secret in constant time. An empty
// configured secret never matches.
func SecretMatches(configured, presented string) bool {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(strings.TrimSpace(presented))) == 1
}
