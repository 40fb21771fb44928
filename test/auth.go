//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huyblog/blogservice/internal/auth"
)

func doLogin(ctx context.Context, t *testing.T) string {
	loginReqJson, err := json.Marshal(auth.Credentials{
		Username: testUsername,
		Password: testPassword,
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/auth/login", apiEndpoint), bytes.NewBuffer(loginReqJson))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var loginResp auth.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp.Token
}

// doRequest sends body as JSON, with the session token when one is given.
func doRequest(ctx context.Context, t *testing.T, client *http.Client, method, path, token string, body any) *http.Response {
	var payload []byte
	if body != nil {
		switch b := body.(type) {
		case string:
			payload = []byte(b)
		default:
			var err error
			payload, err = json.Marshal(b)
			require.NoError(t, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, apiEndpoint+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}
