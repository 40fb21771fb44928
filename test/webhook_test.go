//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyblog/blogservice/internal/deploy"
)

func (s *IntegrationTestSuite) deliverWebhook(ctx context.Context, event, signature string, payload []byte) *http.Response {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiEndpoint+"/deploy-webhook", bytes.NewReader(payload))
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(deploy.HeaderEvent, event)
	if signature != "" {
		req.Header.Set(deploy.HeaderSignature, signature)
	}
	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	return resp
}

func (s *IntegrationTestSuite) TestDeployWebhook() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	marker := filepath.Join(s.deployDir, "deployed.marker")
	_ = os.Remove(marker)

	featurePush := []byte(`{"ref":"refs/heads/feature"}`)
	mainPush := []byte(`{"ref":"refs/heads/main"}`)

	t.Run("invalid signature", func(t *testing.T) {
		resp := s.deliverWebhook(ctx, "push", deploy.Sign([]byte("wrong-secret"), mainPush), mainPush)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.NoFileExists(t, marker)
	})

	t.Run("ping", func(t *testing.T) {
		payload := []byte(`{"zen":"Keep it logically awesome."}`)
		resp := s.deliverWebhook(ctx, "ping", deploy.Sign([]byte(testWebhookSecret), payload), payload)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body deploy.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, deploy.Response{Ok: true, Message: "pong"}, body)
	})

	t.Run("other branch is ignored", func(t *testing.T) {
		resp := s.deliverWebhook(ctx, "push", deploy.Sign([]byte(testWebhookSecret), featurePush), featurePush)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body deploy.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Ignored)
		assert.Equal(t, "not main branch", body.Reason)
		assert.NoFileExists(t, marker)
	})

	t.Run("push to main deploys", func(t *testing.T) {
		resp := s.deliverWebhook(ctx, "push", deploy.Sign([]byte(testWebhookSecret), mainPush), mainPush)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body deploy.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Deploy started", body.Message)
		assert.Contains(t, body.Stdout, "deployed")
		assert.FileExists(t, marker)
	})
}
