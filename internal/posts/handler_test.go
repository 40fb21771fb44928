package posts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/huyblog/blogservice/internal/content"
	"github.com/huyblog/blogservice/internal/telemetry/metrics"
	"github.com/huyblog/blogservice/pkg"
)

func setupTestHandler(t *testing.T) (*mux.Router, *repoMock, *metrics.Manager) {
	t.Helper()

	repo := newRepoMock()
	for _, p := range []*Post{
		testPost("Learning AI", "Học AI", "2024-01-10", "AI", "Học tập"),
		testPost("A good book", "Một cuốn sách hay", "2024-02-01", "Sách"),
		testPost("Notes on money", "Ghi chép tài chính", "2023-12-31", "Tài chính"),
	} {
		require.NoError(t, repo.Create(context.Background(), p))
	}

	metricsManager := metrics.NewTestManager()
	r := mux.NewRouter()
	NewHandler(repo, metricsManager).SetupRoutes(r.PathPrefix("/api").Subrouter())

	return r, repo, metricsManager
}

func testPost(titleEn, titleVi, date string, categories ...string) *Post {
	return &Post{
		Title:      content.BilingualText{En: titleEn, Vi: titleVi},
		Excerpt:    content.BilingualText{En: "excerpt of " + titleEn, Vi: "tóm tắt " + titleVi},
		Content:    content.BilingualText{En: "content", Vi: "nội dung"},
		Date:       date,
		ReadTime:   4,
		Categories: categories,
	}
}

func TestHandler_SetupRoutes(t *testing.T) {
	r := mux.NewRouter()
	NewHandler(newRepoMock(), metrics.NewTestManager()).SetupRoutes(r.PathPrefix("/api").Subrouter())

	id := primitive.NewObjectID().Hex()
	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"all":         {name: "posts-all", path: "/api/posts", method: "GET"},
		"all-options": {name: "posts-all", path: "/api/posts", method: "OPTIONS"},
		"create":      {name: "posts-create", path: "/api/posts", method: "POST"},
		"get":         {name: "posts-get", path: "/api/posts/" + id, method: "GET"},
		"get-options": {name: "posts-get", path: "/api/posts/" + id, method: "OPTIONS"},
		"update":      {name: "posts-update", path: "/api/posts/" + id, method: "PUT"},
		"delete":      {name: "posts-delete", path: "/api/posts/" + id, method: "DELETE"},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest(route.method, route.path, nil)
			require.NoError(t, err)

			routeMatch := &mux.RouteMatch{}
			muxRoute := r.Get(route.name)
			require.NotNil(t, muxRoute)
			assert.True(t, muxRoute.Match(req, routeMatch), caseName)
		})
	}
}

func TestHandler_handleAll(t *testing.T) {
	r, repo, _ := setupTestHandler(t)

	req := httptest.NewRequest("GET", "/api/posts", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, pkg.ContentType.JSON, rr.Header().Get("Content-Type"))

	var posts []*Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &posts))
	require.Len(t, posts, repo.PostsCount())

	// newest first
	assert.Equal(t, "2024-02-01", posts[0].Date)
	assert.Equal(t, "2024-01-10", posts[1].Date)
	assert.Equal(t, "2023-12-31", posts[2].Date)
	assert.NotContains(t, rr.Body.String(), `"_id"`)
}

func TestHandler_handleAll_Empty(t *testing.T) {
	r := mux.NewRouter()
	NewHandler(newRepoMock(), metrics.NewTestManager()).SetupRoutes(r.PathPrefix("/api").Subrouter())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/posts", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestHandler_handleAll_Filtered(t *testing.T) {
	r, _, _ := setupTestHandler(t)

	for caseName, tc := range map[string]struct {
		query         string
		expectedDates []string
	}{
		"search ai":        {query: "q=ai", expectedDates: []string{"2024-01-10"}},
		"search vi":        {query: "q=S%C3%81CH", expectedDates: []string{"2024-02-01"}},
		"category":         {query: "category=T%C3%A0i+ch%C3%ADnh", expectedDates: []string{"2023-12-31"}},
		"inclusive range":  {query: "from=2024-01-10&to=2024-02-01", expectedDates: []string{"2024-02-01", "2024-01-10"}},
		"no match":         {query: "q=phim", expectedDates: []string{}},
		"category and q":   {query: "category=AI&q=book", expectedDates: []string{}},
		"blank parameters": {query: "q=&category=", expectedDates: []string{"2024-02-01", "2024-01-10", "2023-12-31"}},
	} {
		t.Run(caseName, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/posts?"+tc.query, nil))
			require.Equal(t, http.StatusOK, rr.Code)

			var posts []*Post
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &posts))
			dates := make([]string, 0, len(posts))
			for _, p := range posts {
				dates = append(dates, p.Date)
			}
			assert.Equal(t, tc.expectedDates, dates)
		})
	}
}

func TestHandler_CreateThenGet(t *testing.T) {
	r, repo, metricsManager := setupTestHandler(t)
	countBefore := repo.PostsCount()

	body := `{
		"_id": "ignored",
		"title": {"en": "Dune", "vi": "Xứ Cát"},
		"excerpt": {"en": "A review", "vi": "Cảm nhận"},
		"content": {"en": "Long text", "vi": "Bài dài"},
		"date": "2024-03-05",
		"readTime": 7,
		"categories": ["Sách", "Phim"],
		"imageUrl": "https://images.example.com/dune.jpg"
	}`
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("POST", "/api/posts", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, countBefore+1, repo.PostsCount())
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterContentWrites.WithLabelValues("posts", "create")))

	var created Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.False(t, created.ID.IsZero())
	assert.NotContains(t, rr.Body.String(), `"_id"`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/posts/"+created.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var fetched Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
	assert.Equal(t, "Xứ Cát", fetched.Title.Vi)
	assert.Equal(t, []string{"Sách", "Phim"}, fetched.Categories)
	assert.Equal(t, 7, fetched.ReadTime)
}

func TestHandler_handleCreate_Invalid(t *testing.T) {
	r, repo, _ := setupTestHandler(t)
	countBefore := repo.PostsCount()

	valid := `"title":{"en":"t","vi":"t"},"excerpt":{"en":"e","vi":"e"},"content":{"en":"c","vi":"c"},"date":"2024-03-05","readTime":3`
	for caseName, tc := range map[string]struct {
		body        string
		expectedErr string
	}{
		"malformed json":   {body: `{"title":`, expectedErr: "malformed JSON"},
		"empty body":       {body: ``, expectedErr: "request body is empty"},
		"unknown field":    {body: `{` + valid + `,"categories":["AI"],"author":"huy"}`, expectedErr: `unknown field "author"`},
		"empty categories": {body: `{` + valid + `,"categories":[]}`, expectedErr: "categories must contain at least 1 item(s)"},
		"no categories":    {body: `{` + valid + `}`, expectedErr: "categories is required"},
		"bad category":     {body: `{` + valid + `,"categories":["Sports"]}`, expectedErr: "is not one of"},
		"missing title":    {body: `{"excerpt":{"en":"e","vi":"e"},"content":{"en":"c","vi":"c"},"date":"2024-03-05","readTime":3,"categories":["AI"]}`, expectedErr: "title is required"},
		"bad date":         {body: `{"title":{"en":"t","vi":"t"},"excerpt":{"en":"e","vi":"e"},"content":{"en":"c","vi":"c"},"date":"March 5","readTime":3,"categories":["AI"]}`, expectedErr: "YYYY-MM-DD"},
		"bad image":        {body: `{` + valid + `,"categories":["AI"],"imageUrl":"ftp://x/y.png"}`, expectedErr: "imageUrl"},
	} {
		t.Run(caseName, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest("POST", "/api/posts", strings.NewReader(tc.body)))
			require.Equal(t, http.StatusBadRequest, rr.Code)

			var errResp pkg.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
			assert.Contains(t, errResp.Error, tc.expectedErr)
		})
	}

	assert.Equal(t, countBefore, repo.PostsCount())
}

func TestHandler_handleUpdate(t *testing.T) {
	r, repo, _ := setupTestHandler(t)

	all, err := repo.All(context.Background(), Filter{})
	require.NoError(t, err)
	target := all[0]

	body := `{"id":"` + target.ID.Hex() + `","title":{"en":"Updated","vi":"Đã sửa"},"readTime":9}`
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("PUT", "/api/posts/"+target.ID.Hex(), strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, target.ID, updated.ID)
	assert.Equal(t, "Updated", updated.Title.En)
	assert.Equal(t, "Đã sửa", updated.Title.Vi)
	assert.Equal(t, 9, updated.ReadTime)
	// untouched fields stay
	assert.Equal(t, target.Date, updated.Date)
	assert.Equal(t, target.Excerpt, updated.Excerpt)
	assert.Equal(t, target.Categories, updated.Categories)

	stored, err := repo.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, &updated, stored)
}

func TestHandler_handleUpdate_Errors(t *testing.T) {
	r, repo, _ := setupTestHandler(t)
	all, err := repo.All(context.Background(), Filter{})
	require.NoError(t, err)
	existing := all[0].ID.Hex()

	for caseName, tc := range map[string]struct {
		path         string
		body         string
		expectedCode int
		expectedErr  string
	}{
		"malformed id":     {path: "/api/posts/nope", body: `{}`, expectedCode: http.StatusBadRequest, expectedErr: "Invalid post ID"},
		"absent":           {path: "/api/posts/" + primitive.NewObjectID().Hex(), body: `{"readTime":2}`, expectedCode: http.StatusNotFound, expectedErr: "Post not found"},
		"empty categories": {path: "/api/posts/" + existing, body: `{"categories":[]}`, expectedCode: http.StatusBadRequest, expectedErr: "categories"},
		"zero read time":   {path: "/api/posts/" + existing, body: `{"readTime":0}`, expectedCode: http.StatusBadRequest, expectedErr: "readTime"},
		"unknown field":    {path: "/api/posts/" + existing, body: `{"claps":3}`, expectedCode: http.StatusBadRequest, expectedErr: "unknown field"},
	} {
		t.Run(caseName, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest("PUT", tc.path, strings.NewReader(tc.body)))
			require.Equal(t, tc.expectedCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.expectedErr)
		})
	}
}

func TestHandler_handleDelete_Twice(t *testing.T) {
	r, repo, _ := setupTestHandler(t)
	all, err := repo.All(context.Background(), Filter{})
	require.NoError(t, err)
	id := all[1].ID.Hex()
	countBefore := repo.PostsCount()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/posts/"+id, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.Equal(t, countBefore-1, repo.PostsCount())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/posts/"+id, nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Post not found"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/posts/123", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_handleGet_Errors(t *testing.T) {
	r, _, _ := setupTestHandler(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/posts/not-an-id", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid post ID"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/posts/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_StoreFailure(t *testing.T) {
	r, repo, _ := setupTestHandler(t)
	repo.Err = errors.New("server selection timeout")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/posts", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"server selection timeout"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("DELETE", "/api/posts/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
