package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/huyblog/blogservice/internal/telemetry/tracing"
)

var (
	// ErrEmptyResponse is returned when the model answers without any text.
	ErrEmptyResponse = errors.New("no translation in response")
	// ErrUnparseableResponse is returned when a 2xx answer is not a generateContent payload.
	ErrUnparseableResponse = errors.New("unparseable gemini api response")
)

const defaultRetryAfterSeconds = 60

var (
	retryInMessageRegex = regexp.MustCompile(`(?i)retry in ([\d.]+)s`)
	retryDelayRegex     = regexp.MustCompile(`(\d+)`)
)

// UpstreamError is a non-2xx answer from the Gemini API.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini api responded with status %d", e.StatusCode)
}

// RetryAfterSeconds extracts the suggested wait from a 429 body. ok is false
// when the body is not a JSON error document at all.
func (e *UpstreamError) RetryAfterSeconds() (seconds int, ok bool) {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Details []struct {
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return 0, false
	}

	if m := retryInMessageRegex.FindStringSubmatch(body.Error.Message); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return int(math.Ceil(f)), true
		}
	}

	for _, d := range body.Error.Details {
		if d.RetryDelay == "" {
			continue
		}
		if m := retryDelayRegex.FindStringSubmatch(d.RetryDelay); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
		break
	}

	return defaultRetryAfterSeconds, true
}

type generateContentRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiApi calls the generateContent endpoint of the Generative Language API.
type GeminiApi struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGeminiApi(baseURL, apiKey, model string, httpClient *http.Client) *GeminiApi {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiApi{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

func (a *GeminiApi) Model() string {
	return a.model
}

// GenerateContent sends prompt and returns the trimmed text of the first candidate.
func (a *GeminiApi) GenerateContent(ctx context.Context, prompt string) (answer string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "geminiApi.generateContent")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	span.SetAttributes(
		attribute.String("gemini.model", a.model),
		attribute.Int("gemini.prompt_len", len(prompt)),
	)

	reqBody, err := json.Marshal(generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.2,
			MaxOutputTokens: 8192,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate content request: %w", err)
	}

	apiURL := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent?key=%s",
		a.baseURL, url.PathEscape(a.model), url.QueryEscape(a.apiKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		// the url carries the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", fmt.Errorf("call gemini api: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini api response: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorf("gemini api error: %d %s", resp.StatusCode, respBytes)
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: respBytes}
	}

	var genResp generateContentResponse
	if err := json.Unmarshal(respBytes, &genResp); err != nil {
		log.Errorf("gemini api returned unparseable body: %s", err)
		return "", fmt.Errorf("%w: %w", ErrUnparseableResponse, err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(genResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
