package sociallinks

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/huyblog/blogservice/internal/telemetry/metrics"
	"github.com/huyblog/blogservice/internal/validation"
	"github.com/huyblog/blogservice/pkg"
)

type linksRepo interface {
	All(ctx context.Context) ([]*SocialLink, error)
	Get(ctx context.Context, id primitive.ObjectID) (*SocialLink, error)
	Create(ctx context.Context, link *SocialLink) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.D) (*SocialLink, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Handler struct {
	repo           linksRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo linksRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/social-links", handler.handleAll).Methods("GET", "OPTIONS").Name("social-links-all")
	router.HandleFunc("/social-links", handler.handleCreate).Methods("POST").Name("social-links-create")
	router.HandleFunc("/social-links/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("social-links-get")
	router.HandleFunc("/social-links/{id}", handler.handleUpdate).Methods("PUT").Name("social-links-update")
	router.HandleFunc("/social-links/{id}", handler.handleDelete).Methods("DELETE").Name("social-links-delete")
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	links, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get all social links: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pkg.WriteJSONOK(w, links)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid social link ID")
		return
	}

	link, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, "get social link", err)
		return
	}

	pkg.WriteJSONOK(w, link)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSocialLinkRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MissingRequired() {
		pkg.WriteJSONError(w, http.StatusBadRequest, missingFieldsMessage)
		return
	}
	if err := validation.Struct(req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	link := req.ToSocialLink()
	if err := handler.repo.Create(r.Context(), link); err != nil {
		writeRepoError(w, "create social link", err)
		return
	}

	handler.metricsManager.CounterContentWrites.WithLabelValues("social-links", "create").Inc()
	log.Debugf("new social link %s [%s/%s] created", link.ID.Hex(), link.Platform, link.Username)

	pkg.WriteJSON(w, http.StatusCreated, link)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid social link ID")
		return
	}

	var req UpdateSocialLinkRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := handler.repo.Update(r.Context(), id, req.SetFields())
	if err != nil {
		writeRepoError(w, "update social link", err)
		return
	}

	handler.metricsManager.CounterContentWrites.WithLabelValues("social-links", "update").Inc()
	pkg.WriteJSONOK(w, link)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid social link ID")
		return
	}

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, "delete social link", err)
		return
	}

	handler.metricsManager.CounterContentWrites.WithLabelValues("social-links", "delete").Inc()
	pkg.WriteJSONOK(w, map[string]bool{"success": true})
}

func writeRepoError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, ErrSocialLinkNotFound) {
		pkg.WriteJSONError(w, http.StatusNotFound, "Social link not found")
		return
	}
	log.Errorf("%s: %s", action, err)
	pkg.WriteJSONError(w, http.StatusInternalServerError, err.Error())
}
