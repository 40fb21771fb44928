package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/internal/telemetry/tracing"
	"github.com/huyblog/blogservice/pkg"
)

type LoginResponse struct {
	Token string `json:"token"`
}

type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

type Handler struct {
	authService *Service
}

func NewHandler(authService *Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/auth/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	router.HandleFunc("/auth/logout", handler.handleLogout).Methods("GET", "OPTIONS").Name("logout")
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var credentials Credentials
	if err := pkg.DecodeJSONBody(r, &credentials); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if credentials.Username == "" || credentials.Password == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := handler.authService.Login(ctx, credentials, time.Now())
	if errors.Is(err, ErrWrongCredentials) {
		log.Warnf("failed login attempt from %s", pkg.ClientIP(r))
		pkg.WriteJSONError(w, http.StatusBadRequest, "wrong credentials")
		return
	}
	if err != nil {
		log.Errorf("login failed, create session: %s", err)
		span.RecordError(err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "create session failed")
		return
	}

	log.Trace("new login success")
	pkg.WriteJSONOK(w, LoginResponse{Token: token})
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	authToken := r.Header.Get(TokenHeader)
	if authToken == "" {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "missing "+TokenHeader)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout failed: %s", err)
		span.RecordError(err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "logout failed")
		return
	}

	pkg.WriteJSONOK(w, LogoutResponse{LoggedOut: loggedOut})
}
