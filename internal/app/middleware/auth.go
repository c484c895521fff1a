package middlware

import (
	"errors"
	"net/http"
	"strings"

	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/handlers"
	"github.com/smmboost/panel/internal/app/logger"
	"github.com/smmboost/panel/internal/app/service"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	tokenService service.TokenService
	roleService  service.RoleService
}

func NewAuthMiddleware(tokenService service.TokenService, roleService service.RoleService) AuthMiddleware {
	return AuthMiddleware{
		tokenService: tokenService,
		roleService:  roleService,
	}
}

// Identify resolves the caller's principal when a bearer token is present
// and passes the request through otherwise. Public endpoints (the catalog)
// work without identity; balance-dependent handlers gate on it themselves.
func (am *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := am.tokenService.GetPrincipal(token)
		if err != nil {
			logger.Log.Debug("rejecting invalid token", zap.Error(err))
			handlers.WriteJSONErrorResponse(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := appContext.WithPrincipal(r.Context(), principal)
		ctx = appContext.WithAuthToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests with a login prompt rather
// than letting the zero balance masquerade as an answer.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if appContext.GetPrincipal(r.Context()) == "" {
			handlers.WriteJSONErrorResponse(w, "Unauthorized: Login required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the admin surface with the cached role probe. This is
// advisory routing only, the backend re-checks the role on every call.
func (am *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAdmin, err := am.roleService.IsAdmin(r.Context())
		if err != nil {
			handlers.PrepareError(w, err)
			return
		}
		if !isAdmin {
			logger.Log.Warn("non-admin attempted admin action",
				zap.String("principal", appContext.GetPrincipal(r.Context()).String()))
			handlers.PrepareError(w, appErrors.Unauthenticated(errors.New("not an admin"), "Admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, "Bearer ", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
