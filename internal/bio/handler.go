package bio

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/internal/telemetry/metrics"
	"github.com/huyblog/blogservice/pkg"
)

const invalidBodyMessage = "Body must include translations object"

type bioRepo interface {
	Get(ctx context.Context) (Translations, error)
	Upsert(ctx context.Context, translations Translations, now time.Time) error
}

type updateBioRequest struct {
	Translations json.RawMessage `json:"translations"`
}

type Handler struct {
	repo           bioRepo
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(repo bioRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/bio", handler.handleGet).Methods("GET", "OPTIONS").Name("bio-get")
	router.HandleFunc("/bio", handler.handleUpdate).Methods("PUT").Name("bio-update")
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	translations, err := handler.repo.Get(r.Context())
	if err != nil {
		log.Errorf("get bio: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pkg.WriteJSONOK(w, Response{Translations: translations})
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateBioRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := bytes.TrimSpace(req.Translations)
	if len(raw) == 0 || raw[0] != '{' {
		pkg.WriteJSONError(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}

	var translations Translations
	if err := json.Unmarshal(raw, &translations); err != nil {
		log.Debugf("update bio, invalid translations: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "translations values must be objects with en and vi strings")
		return
	}

	if err := handler.repo.Upsert(r.Context(), translations, handler.now().UTC()); err != nil {
		log.Errorf("update bio: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	handler.metricsManager.CounterContentWrites.WithLabelValues("bio", "upsert").Inc()
	pkg.WriteJSONOK(w, Response{Translations: translations})
}
