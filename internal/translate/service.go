package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/internal/telemetry/metrics"
)

const (
	TypeText = "text"
	TypePost = "post"
)

var codeFenceRegex = regexp.MustCompile("^```(?:json)?\\s*|\\s*```$")

// PostFields is the translatable part of a post, in one language.
type PostFields struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

func (p PostFields) IsEmpty() bool {
	return p.Title == "" && p.Excerpt == "" && p.Content == ""
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Service translates Vietnamese blog text to English.
type Service struct {
	generator      contentGenerator
	cache          *Cache
	metricsManager *metrics.Manager
}

func NewService(generator contentGenerator, cache *Cache, metricsManager *metrics.Manager) *Service {
	return &Service{
		generator:      generator,
		cache:          cache,
		metricsManager: metricsManager,
	}
}

func TextPrompt(text string) string {
	return "Translate the following Vietnamese text to English. Preserve paragraph breaks (double newlines). " +
		"Output only the English translation, nothing else.\n\n" + text
}

func PostPrompt(post PostFields) string {
	return "Translate the following Vietnamese blog post to English. Return ONLY a valid JSON object with exactly " +
		`these keys: "title", "excerpt", "content". No markdown, no extra text. Use empty string for missing fields.` +
		fmt.Sprintf("\n\nTitle: %s\n\nExcerpt: %s\n\nContent: %s", post.Title, post.Excerpt, post.Content)
}

// ParsePostAnswer reads the JSON object the model was asked for. Missing or
// non-string keys become empty strings; an answer that is not JSON becomes the title.
func ParsePostAnswer(answer string) PostFields {
	stripped := strings.TrimSpace(codeFenceRegex.ReplaceAllString(answer, ""))

	var raw map[string]any
	if err := json.Unmarshal([]byte(stripped), &raw); err != nil {
		log.Debugf("post translation is not json, using it as title: %s", err)
		return PostFields{Title: answer}
	}

	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	return PostFields{
		Title:   str("title"),
		Excerpt: str("excerpt"),
		Content: str("content"),
	}
}

// TranslateText translates already trimmed, non-empty text.
func (s *Service) TranslateText(ctx context.Context, text string) (string, error) {
	return s.generate(ctx, TypeText, TextPrompt(text))
}

// TranslatePost translates the trimmed post fields; at least one must be non-empty.
func (s *Service) TranslatePost(ctx context.Context, post PostFields) (PostFields, error) {
	answer, err := s.generate(ctx, TypePost, PostPrompt(post))
	if err != nil {
		return PostFields{}, err
	}
	return ParsePostAnswer(answer), nil
}

func (s *Service) generate(ctx context.Context, kind, prompt string) (string, error) {
	model := s.generator.Model()
	if answer, ok := s.cache.Get(model, prompt); ok {
		log.Tracef("%s translation served from cache", kind)
		s.metricsManager.CounterTranslations.WithLabelValues(kind, "cached").Inc()
		return answer, nil
	}

	start := time.Now()
	answer, err := s.generator.GenerateContent(ctx, prompt)
	s.metricsManager.HistogramUpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metricsManager.CounterTranslations.WithLabelValues(kind, "error").Inc()
		return "", err
	}

	s.cache.Set(model, prompt, answer)
	s.metricsManager.CounterTranslations.WithLabelValues(kind, "ok").Inc()

	return answer, nil
}
