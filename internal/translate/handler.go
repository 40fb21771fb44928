package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=translate

type Translator interface {
	TranslateText(ctx context.Context, text string) (string, error)
	TranslatePost(ctx context.Context, post PostFields) (PostFields, error)
}

const (
	msgNotConfigured   = "Translation not configured. Set GEMINI_API_KEY in backend .env (get key at https://aistudio.google.com/apikey)"
	msgTextMissing     = "Body must include text (string)"
	msgTextEmpty       = "Text cannot be empty"
	msgPostEmpty       = "Post translation requires at least one of title, excerpt, content"
	msgInvalidKey      = "Invalid or missing GEMINI_API_KEY. Check backend .env and https://aistudio.google.com/apikey"
	msgUnavailable     = "Gemini API is temporarily unavailable. Try again later."
	msgUpstreamError   = "Translation service error."
	msgRateLimited     = "Quota/rate limit exceeded. Try again in 1-2 minutes."
	msgRateLimitedWait = "Đã hết quota/giới hạn dịch (Gemini free tier). Thử lại sau %d giây hoặc vài phút."
	msgNoTranslation   = "No translation in response"
)

type translateRequest struct {
	Type    string          `json:"type"`
	Text    json.RawMessage `json:"text"`
	Title   json.RawMessage `json:"title"`
	Excerpt json.RawMessage `json:"excerpt"`
	Content json.RawMessage `json:"content"`
}

type TextResponse struct {
	Translated string `json:"translated"`
}

type PostResponse struct {
	Translated PostFields `json:"translated"`
}

type Handler struct {
	translator Translator
}

// NewHandler accepts a nil translator, every request then gets a 503.
func NewHandler(translator Translator) *Handler {
	return &Handler{
		translator: translator,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/translate", handler.handleTranslate).Methods("POST", "OPTIONS").Name("translate")
}

// stringValue reports the JSON string in raw, ok is false for any other JSON type.
func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (handler *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if handler.translator == nil {
		pkg.WriteJSONError(w, http.StatusServiceUnavailable, msgNotConfigured)
		return
	}

	var req translateRequest
	if err := pkg.DecodeJSONBody(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Type {
	case "", TypeText:
		handler.translateText(w, r, req)
	case TypePost:
		handler.translatePost(w, r, req)
	default:
		pkg.WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf(`type must be "%s" or "%s"`, TypeText, TypePost))
	}
}

func (handler *Handler) translateText(w http.ResponseWriter, r *http.Request, req translateRequest) {
	text, ok := stringValue(req.Text)
	if !ok || text == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, msgTextMissing)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, msgTextEmpty)
		return
	}

	translated, err := handler.translator.TranslateText(r.Context(), text)
	if err != nil {
		writeTranslateError(w, err)
		return
	}

	pkg.WriteJSONOK(w, TextResponse{Translated: translated})
}

func (handler *Handler) translatePost(w http.ResponseWriter, r *http.Request, req translateRequest) {
	// non-string fields count as missing
	title, _ := stringValue(req.Title)
	excerpt, _ := stringValue(req.Excerpt)
	content, _ := stringValue(req.Content)
	post := PostFields{
		Title:   strings.TrimSpace(title),
		Excerpt: strings.TrimSpace(excerpt),
		Content: strings.TrimSpace(content),
	}
	if post.IsEmpty() {
		pkg.WriteJSONError(w, http.StatusBadRequest, msgPostEmpty)
		return
	}

	translated, err := handler.translator.TranslatePost(r.Context(), post)
	if err != nil {
		writeTranslateError(w, err)
		return
	}

	pkg.WriteJSONOK(w, PostResponse{Translated: translated})
}

func writeTranslateError(w http.ResponseWriter, err error) {
	var upstreamErr *UpstreamError
	switch {
	case errors.As(err, &upstreamErr):
		status, message := upstreamStatus(upstreamErr)
		if status == http.StatusTooManyRequests {
			if seconds, ok := upstreamErr.RetryAfterSeconds(); ok {
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
			}
		}
		pkg.WriteJSONError(w, status, message)
	case errors.Is(err, ErrEmptyResponse):
		pkg.WriteJSONError(w, http.StatusBadGateway, msgNoTranslation)
	case errors.Is(err, ErrUnparseableResponse):
		pkg.WriteJSONError(w, http.StatusBadGateway, msgUpstreamError)
	default:
		log.Errorf("translate: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// upstreamStatus maps a Gemini failure to the status and message returned to the client.
func upstreamStatus(err *UpstreamError) (int, string) {
	switch {
	case err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden:
		return err.StatusCode, msgInvalidKey
	case err.StatusCode == http.StatusTooManyRequests:
		seconds, ok := err.RetryAfterSeconds()
		if !ok {
			return http.StatusTooManyRequests, msgRateLimited
		}
		return http.StatusTooManyRequests, fmt.Sprintf(msgRateLimitedWait, seconds)
	case err.StatusCode >= 500:
		return http.StatusBadGateway, msgUnavailable
	default:
		return http.StatusBadGateway, msgUpstreamError
	}
}
