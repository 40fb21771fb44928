package deploy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/internal/telemetry/metrics"
	"github.com/huyblog/blogservice/pkg"
)

const (
	HeaderSignature = "X-Hub-Signature-256"
	HeaderEvent     = "X-GitHub-Event"

	MainBranchRef = "refs/heads/main"
)

type InfoResponse struct {
	Message string `json:"message"`
	Usage   string `json:"usage"`
}

type Response struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Ignored bool   `json:"ignored,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Stdout  string `json:"stdout,omitempty"`
}

type FailedResponse struct {
	Error  string `json:"error"`
	Stderr string `json:"stderr"`
}

type pushEvent struct {
	Ref string `json:"ref"`
}

type Handler struct {
	secret         []byte
	deployer       Deployer
	metricsManager *metrics.Manager
}

// NewHandler with an empty secret answers every POST with 503.
func NewHandler(secret string, deployer Deployer, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		secret:         []byte(secret),
		deployer:       deployer,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/deploy-webhook", handler.handleInfo).Methods("GET").Name("deploy-webhook-info")
	router.HandleFunc("/deploy-webhook", handler.handleWebhook).Methods("POST").Name("deploy-webhook")
}

func (handler *Handler) handleInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONOK(w, InfoResponse{
		Message: "Deploy webhook endpoint. GitHub sends POST on push; this URL does not support GET.",
		Usage:   "Configure this URL as Webhook URL in GitHub repo Settings → Webhooks. Method: POST.",
	})
}

func (handler *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if len(handler.secret) == 0 {
		pkg.WriteJSONError(w, http.StatusServiceUnavailable, "Webhook not configured (WEBHOOK_SECRET missing)")
		return
	}

	signature := r.Header.Get(HeaderSignature)
	if signature == "" {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Missing X-Hub-Signature-256")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			pkg.WriteJSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	if !VerifySignature(handler.secret, body, signature) {
		log.Warnf("deploy webhook: invalid signature from %s", pkg.ClientIP(r))
		handler.metricsManager.CounterDeploys.WithLabelValues("unauthorized").Inc()
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event pushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch r.Header.Get(HeaderEvent) {
	case "ping":
		pkg.WriteJSONOK(w, Response{Ok: true, Message: "pong"})
		return
	case "push":
	default:
		handler.metricsManager.CounterDeploys.WithLabelValues("ignored").Inc()
		pkg.WriteJSONOK(w, Response{Ok: true, Ignored: true})
		return
	}

	if event.Ref != MainBranchRef {
		log.Debugf("deploy webhook: ignoring push to %q", event.Ref)
		handler.metricsManager.CounterDeploys.WithLabelValues("ignored").Inc()
		pkg.WriteJSONOK(w, Response{Ok: true, Ignored: true, Reason: "not main branch"})
		return
	}

	log.Infoln("deploy webhook: push to main, deploying ...")
	out, err := handler.deployer.Deploy(r.Context())
	if err != nil {
		log.Errorf("deploy failed: %s\n%s", err, out.Stderr)
		handler.metricsManager.CounterDeploys.WithLabelValues("failed").Inc()
		stderr := out.Stderr
		if stderr == "" {
			stderr = err.Error()
		}
		pkg.WriteJSON(w, http.StatusInternalServerError, FailedResponse{Error: "Deploy failed", Stderr: stderr})
		return
	}

	log.Infof("deploy completed: %s", out.Stdout)
	handler.metricsManager.CounterDeploys.WithLabelValues("ok").Inc()
	pkg.WriteJSONOK(w, Response{Ok: true, Message: "Deploy started", Stdout: out.Stdout})
}
