package middleware

import (
	"net/http"

	"github.com/angelmondragon/wholesale-backoffice/api/responses"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
)

// RequirePermission rejects callers whose capabilities lack any of perms.
func RequirePermission(logg *logger.Logger, perms ...enums.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caps := CapabilitiesFromContext(r.Context())
			for _, perm := range perms {
				if !caps.Has(perm) {
					err := pkgerrors.New(pkgerrors.CodeForbidden, "permission required").
						WithDetails(map[string]any{"permission": perm})
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
