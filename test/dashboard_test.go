//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyblog/blogservice/internal/admin"
	"github.com/huyblog/blogservice/internal/posts"
	"github.com/huyblog/blogservice/internal/testinternals"
)

func (s *IntegrationTestSuite) TestDashboard_SaveAndDelete() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	confirm := false
	dashboard := admin.NewDashboard(s.adminClient(ctx), admin.ConfirmFunc(func(string) bool {
		return confirm
	}))
	require.NoError(t, dashboard.Refresh(ctx))
	assert.Empty(t, dashboard.Posts())

	saved, err := dashboard.SavePost(ctx, testinternals.FakePost("2024-03-01", "Nhật kí"))
	require.NoError(t, err)
	require.Len(t, dashboard.Posts(), 1)

	edited := *dashboard.Posts()[0]
	edited.ReadTime = 99
	_, err = dashboard.SavePost(ctx, &edited)
	require.NoError(t, err)
	require.Len(t, dashboard.Posts(), 1)
	assert.Equal(t, 99, dashboard.Posts()[0].ReadTime)

	// a rejected save reports the error and keeps what was fetched
	broken := *dashboard.Posts()[0]
	broken.Categories = []string{}
	_, err = dashboard.SavePost(ctx, &broken)
	require.Error(t, err)
	require.Len(t, dashboard.Posts(), 1)
	assert.Equal(t, []string{"Nhật kí"}, dashboard.Posts()[0].Categories)

	err = dashboard.DeletePost(ctx, saved.ID.Hex())
	assert.ErrorIs(t, err, admin.ErrDeleteDeclined)
	list, err := s.adminClient(ctx).ListPosts(ctx, posts.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	confirm = true
	require.NoError(t, dashboard.DeletePost(ctx, saved.ID.Hex()))
	assert.Empty(t, dashboard.Posts())
}

func (s *IntegrationTestSuite) TestDashboard_RemoveImage() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dashboard := admin.NewDashboard(s.adminClient(ctx), nil)
	post := testinternals.FakePost("2024-04-01", "Phim")
	post.ImageURL = "https://example.com/cover.jpg"
	saved, err := dashboard.SavePost(ctx, post)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/cover.jpg", saved.ImageURL)

	edited := *saved
	edited.ImageURL = ""
	_, err = dashboard.SavePost(ctx, &edited)
	require.NoError(t, err)

	stored, err := s.adminClient(ctx).GetPost(ctx, saved.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored.ImageURL)
	require.Len(t, dashboard.Posts(), 1)
	assert.Empty(t, dashboard.Posts()[0].ImageURL)
}

func (s *IntegrationTestSuite) TestTranslate_NotConfigured() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp := doRequest(ctx, t, s.httpClient, http.MethodPost, "/translate", doLogin(ctx, t), map[string]string{"text": "Xin chào"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestHealth() {
	t := s.T()

	resp, err := s.httpClient.Get(serverEndpoint + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
