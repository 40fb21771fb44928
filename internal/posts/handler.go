package posts

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

type postsRepo interface {
	All(ctx context.Context, filter Filter) ([]*Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Post, error)
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.D) (*Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

type Handler struct {
	repo           postsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo postsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/posts", handler.handleAll).Methods("GET", "OPTIONS").Name("posts-all")
	router.HandleFunc("/posts", handler.handleCreate).Methods("POST").Name("posts-create")
	router.HandleFunc("/posts/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("posts-get")
	router.HandleFunc("/posts/{id}", handler.handleUpdate).Methods("PUT").Name("posts-update")
	router.HandleFunc("/posts/{id}", handler.handleDelete).Methods("DELETE").Name("posts-delete")
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	filter := FilterFromQuery(r.URL.Query())

	posts, err := handler.repo.All(r.Context(), filter)
	if err != nil {
		log.Errorf("get all posts: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Tracef("returning %d posts", len(posts))
	pkg.WriteJSONOK(w, posts)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		handler.writeRepoError(w, "get post", err)
		return
	}

	pkg.WriteJSONOK(w, post)
}

func (handler *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	post := req.ToPost()
	if err := handler.repo.Create(r.Context(), post); err != nil {
		handler.writeRepoError(w, "create post", err)
		return
	}

	handler.metricsManager.CounterContentWrites.WithLabelValues("posts", "create").Inc()
	log.Debugf("new post %s [%s] created", post.ID.Hex(), post.Title.En)

	pkg.WriteJSON(w, http.StatusCreated, post)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req UpdatePostRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := handler.repo.Update(r.Context(), id, req.SetFields())
	if err != nil {
		handler.writeRepoError(w, "update post", err)
		return
	}

	handler.metricsManager.CounterContentWrites.WithLabelValues("posts", "update").Inc()
	pkg.WriteJSONOK(w, post)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		handler.writeRepoError(w, "delete post", err)
		return
	}

	handler.metricsManager.CounterContentWrites.WithLabelValues("posts", "delete").Inc()
	log.Debugf("post %s deleted", id.Hex())

	pkg.WriteJSONOK(w, DeleteResponse{Success: true})
}

func (handler *Handler) writeRepoError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, ErrPostNotFound) {
		pkg.WriteJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	log.Errorf("%s: %s", action, err)
	pkg.WriteJSONError(w, http.StatusInternalServerError, err.Error())
}
