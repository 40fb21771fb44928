//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyblog/blogservice/internal/admin"
	"github.com/huyblog/blogservice/internal/content"
	"github.com/huyblog/blogservice/internal/posts"
	"github.com/huyblog/blogservice/internal/testinternals"
	"github.com/huyblog/blogservice/pkg"
)

func (s *IntegrationTestSuite) TestPosts_CreateGetDelete() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := s.adminClient(ctx)

	input := testinternals.FakePost("2024-03-01", "AI", "Sách")
	created, err := client.CreatePost(ctx, input)
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())

	fetched, err := client.GetPost(ctx, created.ID.Hex())
	require.NoError(t, err)
	input.ID = created.ID
	assert.Equal(t, input, fetched)

	// raw response carries id, never _id
	resp := doRequest(ctx, t, s.httpClient, http.MethodGet, "/posts/"+created.ID.Hex(), "", nil)
	defer resp.Body.Close()
	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, created.ID.Hex(), raw["id"])
	assert.NotContains(t, raw, "_id")

	require.NoError(t, client.DeletePost(ctx, created.ID.Hex()))
	err = client.DeletePost(ctx, created.ID.Hex())
	require.Error(t, err)
	assert.True(t, admin.IsNotFound(err))
}

func (s *IntegrationTestSuite) TestPosts_NewestFirstAndFilter() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := s.adminClient(ctx)

	older := testinternals.FakePost("2024-01-10", "Phim")
	older.Title = content.BilingualText{En: "Learning about AI", Vi: "Học về trí tuệ nhân tạo"}
	older.Excerpt = content.BilingualText{En: "thoughts", Vi: "suy nghĩ"}
	middle := testinternals.FakePost("2024-02-15", "Tài chính")
	middle.Title = content.BilingualText{En: "Budget", Vi: "Ngân sách"}
	middle.Excerpt = content.BilingualText{En: "money", Vi: "tiền"}
	newer := testinternals.FakePost("2024-03-20", "AI")
	newer.Title = content.BilingualText{En: "Notes", Vi: "Ghi chép"}
	newer.Excerpt = content.BilingualText{En: "small ai experiments", Vi: "thử nghiệm"}

	for _, p := range []*posts.Post{older, middle, newer} {
		_, err := client.CreatePost(ctx, p)
		require.NoError(t, err)
	}

	all, err := client.ListPosts(ctx, posts.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2024-03-20", "2024-02-15", "2024-01-10"}, []string{all[0].Date, all[1].Date, all[2].Date})

	for name, tc := range map[string]struct {
		filter    posts.Filter
		wantDates []string
	}{
		"search title and excerpt": {filter: posts.Filter{Query: "AI"}, wantDates: []string{"2024-03-20", "2024-01-10"}},
		"search vietnamese":        {filter: posts.Filter{Query: "ngân"}, wantDates: []string{"2024-02-15"}},
		"category":                 {filter: posts.Filter{Category: "AI"}, wantDates: []string{"2024-03-20"}},
		"inclusive range":          {filter: posts.Filter{FromDate: "2024-01-10", ToDate: "2024-02-15"}, wantDates: []string{"2024-02-15", "2024-01-10"}},
		"nothing matches":          {filter: posts.Filter{Query: "zzz"}, wantDates: []string{}},
	} {
		t.Run(name, func(t *testing.T) {
			list, err := client.ListPosts(ctx, tc.filter)
			require.NoError(t, err)
			dates := make([]string, 0, len(list))
			for _, p := range list {
				dates = append(dates, p.Date)
			}
			assert.Equal(t, tc.wantDates, dates)
		})
	}
}

func (s *IntegrationTestSuite) TestPosts_Update() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t)
	client := admin.NewClient(apiEndpoint, token, s.httpClient)

	created, err := client.CreatePost(ctx, testinternals.FakePost("2024-03-01", "AI"))
	require.NoError(t, err)

	resp := doRequest(ctx, t, s.httpClient, http.MethodPut, "/posts/"+created.ID.Hex(), token, map[string]any{
		"_id":      created.ID.Hex(),
		"readTime": 42,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	fetched, err := client.GetPost(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 42, fetched.ReadTime)
	assert.Equal(t, created.Title, fetched.Title)
}

func (s *IntegrationTestSuite) TestPosts_Rejected() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t)
	valid := map[string]any{
		"title":      map[string]string{"en": "a", "vi": "b"},
		"excerpt":    map[string]string{"en": "a", "vi": "b"},
		"content":    map[string]string{"en": "a", "vi": "b"},
		"date":       "2024-03-01",
		"readTime":   1,
		"categories": []string{"AI"},
	}
	with := func(key string, value any) map[string]any {
		m := make(map[string]any, len(valid)+1)
		for k, v := range valid {
			m[k] = v
		}
		m[key] = value
		return m
	}

	for name, tc := range map[string]struct {
		method     string
		path       string
		token      string
		body       any
		wantStatus int
	}{
		"no session":       {method: http.MethodPost, path: "/posts", body: valid, wantStatus: http.StatusUnauthorized},
		"bad session":      {method: http.MethodPost, path: "/posts", token: "nope", body: valid, wantStatus: http.StatusUnauthorized},
		"empty categories": {method: http.MethodPost, path: "/posts", token: token, body: with("categories", []string{}), wantStatus: http.StatusBadRequest},
		"unknown category": {method: http.MethodPost, path: "/posts", token: token, body: with("categories", []string{"Cooking"}), wantStatus: http.StatusBadRequest},
		"unknown field":    {method: http.MethodPost, path: "/posts", token: token, body: with("claps", 3), wantStatus: http.StatusBadRequest},
		"malformed json":   {method: http.MethodPost, path: "/posts", token: token, body: `{"title":`, wantStatus: http.StatusBadRequest},
		"malformed id":     {method: http.MethodGet, path: "/posts/not-an-id", wantStatus: http.StatusBadRequest},
		"absent id":        {method: http.MethodGet, path: "/posts/65e1b2c3d4e5f60718293a4b", wantStatus: http.StatusNotFound},
		"update absent":    {method: http.MethodPut, path: "/posts/65e1b2c3d4e5f60718293a4b", token: token, body: map[string]int{"readTime": 2}, wantStatus: http.StatusNotFound},
	} {
		t.Run(name, func(t *testing.T) {
			resp := doRequest(ctx, t, s.httpClient, tc.method, tc.path, tc.token, tc.body)
			defer resp.Body.Close()
			assert.Equal(t, tc.wantStatus, resp.StatusCode)

			var errResp pkg.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
			assert.NotEmpty(t, errResp.Error)
		})
	}
}
