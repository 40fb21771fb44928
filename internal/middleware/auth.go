package middleware

import (
	"context"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/huyblog/blogservice/internal/auth"
	"github.com/huyblog/blogservice/internal/telemetry/tracing"
	"github.com/huyblog/blogservice/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type loginChecker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}

var _ loginChecker = (*auth.LoginChecker)(nil)

// DefaultProtectedPaths are the resources whose writes need an admin session.
var DefaultProtectedPaths = []string{
	"/api/posts",
	"/api/social-links",
	"/api/bio",
	"/api/translate",
}

type AuthMiddlewareHandler struct {
	requireAuth    bool
	loginChecker   loginChecker
	protectedPaths []string
}

// NewAuthMiddlewareHandler with requireAuth off lets every request through.
func NewAuthMiddlewareHandler(
	requireAuth bool,
	loginChecker loginChecker,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		requireAuth:    requireAuth,
		loginChecker:   loginChecker,
		protectedPaths: DefaultProtectedPaths,
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (h *AuthMiddlewareHandler) isProtected(r *http.Request) bool {
	if !isWriteMethod(r.Method) {
		return false
	}
	for _, p := range h.protectedPaths {
		if r.URL.Path == p || strings.HasPrefix(r.URL.Path, p+"/") {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !h.requireAuth || !h.isProtected(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			authToken := r.Header.Get(auth.TokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s %s", r.Method, r.URL.Path)
				pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			isLogged, err := h.loginChecker.IsLogged(ctx, authToken)
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				span.SetStatus(codes.Error, "check-logged-err")
				span.RecordError(err)
				return
			}
			if !isLogged {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s %s", r.Method, r.URL.Path)
				pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
