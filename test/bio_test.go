//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyblog/blogservice/internal/bio"
)

func (s *IntegrationTestSuite) TestBio() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := s.adminClient(ctx)

	translations, err := client.GetBio(ctx)
	require.NoError(t, err)
	assert.Empty(t, translations)

	want := bio.Translations{
		"bio":   {En: "I write about books", Vi: "Tôi viết về sách"},
		"title": {En: "About me", Vi: "Về tôi"},
	}
	_, err = client.SetBio(ctx, want)
	require.NoError(t, err)

	translations, err = client.GetBio(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, translations)

	resp := doRequest(ctx, t, s.httpClient, http.MethodPut, "/bio", doLogin(ctx, t), map[string]string{"translations": "nope"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
