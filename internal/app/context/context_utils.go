package context

import (
	"context"
	"net/http"

	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
)

type key string

const principalKey key = "principal"
const authTokenKey key = "authToken"
const requestIDKey key = "requestID"

// WithPrincipal stores the authenticated caller's stable identifier.
func WithPrincipal(ctx context.Context, principal models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal returns the caller's principal, or the empty principal when
// the request carried no identity.
func GetPrincipal(ctx context.Context) models.Principal {
	val := ctx.Value(principalKey)
	principal, ok := val.(models.Principal)
	if !ok {
		return ""
	}
	return principal
}

// WithAuthToken keeps the caller's raw bearer token so backend calls can
// forward it; the backend re-checks authorization on every privileged call.
func WithAuthToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, authTokenKey, token)
}

func GetAuthToken(ctx context.Context) string {
	val := ctx.Value(authTokenKey)
	token, ok := val.(string)
	if !ok {
		return ""
	}
	return token
}

// WithRequestID stores the id minted for the inbound request so backend-call
// logs can be correlated with the request that caused them.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	val := ctx.Value(requestIDKey)
	requestID, ok := val.(string)
	if !ok {
		return ""
	}
	return requestID
}

func GetContextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		var errMsg string
		var errCode int

		switch err {
		case context.Canceled:
			errMsg, errCode = "Request canceled", http.StatusInternalServerError
		case context.DeadlineExceeded:
			errMsg, errCode = "Timeout exceeded", http.StatusInternalServerError
		default:
			errMsg, errCode = "Context error", http.StatusInternalServerError
		}
		return appErrors.NewWithCode(err, errMsg, errCode)
	}
	return nil
}
