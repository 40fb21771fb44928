//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyblog/blogservice/internal/admin"
	"github.com/huyblog/blogservice/internal/sociallinks"
	"github.com/huyblog/blogservice/internal/testinternals"
	"github.com/huyblog/blogservice/pkg"
)

func (s *IntegrationTestSuite) TestSocialLinks_CRUD() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := s.adminClient(ctx)

	created, err := client.CreateSocialLink(ctx, testinternals.FakeSocialLink())
	require.NoError(t, err)

	updated, err := client.UpdateSocialLink(ctx, created.ID.Hex(), &sociallinks.SocialLink{
		Platform: "Github",
		Username: "huy-dev",
		URL:      "https://github.com/huy-dev",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "huy-dev", updated.Username)

	list, err := client.ListSocialLinks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, updated, list[0])

	require.NoError(t, client.DeleteSocialLink(ctx, created.ID.Hex()))
	err = client.DeleteSocialLink(ctx, created.ID.Hex())
	assert.True(t, admin.IsNotFound(err))
}

func (s *IntegrationTestSuite) TestSocialLinks_MissingFields() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := doLogin(ctx, t)
	resp := doRequest(ctx, t, s.httpClient, http.MethodPost, "/social-links", token, map[string]string{
		"platform": "Github",
		"url":      "https://github.com/huy",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp pkg.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "Missing required fields: platform, username, and url are required", errResp.Error)
}
