package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/huyblog/blogservice/internal/auth"
	"github.com/huyblog/blogservice/internal/bio"
	"github.com/huyblog/blogservice/internal/content"
	"github.com/huyblog/blogservice/internal/posts"
	"github.com/huyblog/blogservice/internal/sociallinks"
	"github.com/huyblog/blogservice/internal/translate"
	"github.com/huyblog/blogservice/pkg"
)

const (
	DefaultBaseURL = "http://localhost:3001/api"
	defaultTimeout = 2 * time.Minute
)

// APIError is a non-2xx answer of the blog API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api responded with status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the public blog API. Writes carry the session token when one is set.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", pkg.ContentType.JSON)
	}
	req.Header.Set("Accept", pkg.ContentType.JSON)
	if c.token != "" {
		req.Header.Set(auth.TokenHeader, c.token)
	}

	log.Debugf("admin client: %s %s", method, req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp pkg.ErrorResponse
		if json.Unmarshal(respBytes, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(respBytes))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp auth.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", auth.Credentials{
		Username: username,
		Password: password,
	}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Logout(ctx context.Context) (bool, error) {
	var resp auth.LogoutResponse
	if err := c.do(ctx, http.MethodGet, "/auth/logout", nil, &resp); err != nil {
		return false, err
	}
	return resp.LoggedOut, nil
}

// ListPosts returns the posts newest first. A zero filter lists everything.
func (c *Client) ListPosts(ctx context.Context, filter posts.Filter) ([]*posts.Post, error) {
	query := url.Values{}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.FromDate != "" {
		query.Set("from", filter.FromDate)
	}
	if filter.ToDate != "" {
		query.Set("to", filter.ToDate)
	}
	path := "/posts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var list []*posts.Post
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*posts.Post, error) {
	post := &posts.Post{}
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (c *Client) CreatePost(ctx context.Context, post *posts.Post) (*posts.Post, error) {
	created := &posts.Post{}
	if err := c.do(ctx, http.MethodPost, "/posts", post, created); err != nil {
		return nil, err
	}
	return created, nil
}

// postUpdate is the PUT body. Every editable field is sent, imageUrl included
// when empty, so a removed image is cleared on the server.
type postUpdate struct {
	Title      content.BilingualText `json:"title"`
	Excerpt    content.BilingualText `json:"excerpt"`
	Content    content.BilingualText `json:"content"`
	Date       string                `json:"date"`
	ReadTime   int                   `json:"readTime"`
	Categories []string              `json:"categories"`
	ImageURL   string                `json:"imageUrl"`
}

func newPostUpdate(post *posts.Post) postUpdate {
	return postUpdate{
		Title:      post.Title,
		Excerpt:    post.Excerpt,
		Content:    post.Content,
		Date:       post.Date,
		ReadTime:   post.ReadTime,
		Categories: post.Categories,
		ImageURL:   post.ImageURL,
	}
}

func (c *Client) UpdatePost(ctx context.Context, id string, post *posts.Post) (*posts.Post, error) {
	updated := &posts.Post{}
	if err := c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), newPostUpdate(post), updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListSocialLinks(ctx context.Context) ([]*sociallinks.SocialLink, error) {
	var list []*sociallinks.SocialLink
	if err := c.do(ctx, http.MethodGet, "/social-links", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateSocialLink(ctx context.Context, link *sociallinks.SocialLink) (*sociallinks.SocialLink, error) {
	created := &sociallinks.SocialLink{}
	if err := c.do(ctx, http.MethodPost, "/social-links", link, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) UpdateSocialLink(ctx context.Context, id string, link *sociallinks.SocialLink) (*sociallinks.SocialLink, error) {
	updated := &sociallinks.SocialLink{}
	if err := c.do(ctx, http.MethodPut, "/social-links/"+url.PathEscape(id), link, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeleteSocialLink(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/social-links/"+url.PathEscape(id), nil, nil)
}

func (c *Client) GetBio(ctx context.Context) (bio.Translations, error) {
	var resp bio.Response
	if err := c.do(ctx, http.MethodGet, "/bio", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Translations == nil {
		resp.Translations = bio.Translations{}
	}
	return resp.Translations, nil
}

func (c *Client) SetBio(ctx context.Context, translations bio.Translations) (bio.Translations, error) {
	var resp bio.Response
	if err := c.do(ctx, http.MethodPut, "/bio", bio.Response{Translations: translations}, &resp); err != nil {
		return nil, err
	}
	return resp.Translations, nil
}

// TranslateText asks the gateway for an English version of a Vietnamese text.
func (c *Client) TranslateText(ctx context.Context, text string) (string, error) {
	var resp translate.TextResponse
	if err := c.do(ctx, http.MethodPost, "/translate", map[string]string{
		"type": translate.TypeText,
		"text": text,
	}, &resp); err != nil {
		return "", err
	}
	return resp.Translated, nil
}

func (c *Client) TranslatePost(ctx context.Context, fields translate.PostFields) (translate.PostFields, error) {
	var resp translate.PostResponse
	if err := c.do(ctx, http.MethodPost, "/translate", map[string]string{
		"type":    translate.TypePost,
		"title":   fields.Title,
		"excerpt": fields.Excerpt,
		"content": fields.Content,
	}, &resp); err != nil {
		return translate.PostFields{}, err
	}
	return resp.Translated, nil
}
