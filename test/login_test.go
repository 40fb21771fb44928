//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huyblog/blogservice/internal/auth"
	"github.com/huyblog/blogservice/pkg"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := map[string]struct {
		loginReq           auth.Credentials
		expectedStatusCode int
		expectedError      string
	}{
		"good creds": {
			loginReq:           auth.Credentials{Username: testUsername, Password: testPassword},
			expectedStatusCode: http.StatusOK,
		},
		"bad password": {
			loginReq:           auth.Credentials{Username: testUsername, Password: "bad-password"},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "wrong credentials",
		},
		"bad username": {
			loginReq:           auth.Credentials{Username: "bad-username", Password: testPassword},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "wrong credentials",
		},
		"missing password": {
			loginReq:           auth.Credentials{Username: testUsername},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "username and password are required",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			resp := doRequest(ctx, t, s.httpClient, http.MethodPost, "/auth/login", "", tc.loginReq)
			defer resp.Body.Close()
			require.Equal(t, tc.expectedStatusCode, resp.StatusCode)

			if tc.expectedError != "" {
				var errResp pkg.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
				assert.Equal(t, tc.expectedError, errResp.Error)
				return
			}

			var loginResp auth.LoginResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
			assert.NotEmpty(t, loginResp.Token)
		})
	}
}

func (s *IntegrationTestSuite) TestLoginThenLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := s.adminClient(ctx)

	loggedOut, err := client.Logout(ctx)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	// the session is gone, a second logout finds nothing
	loggedOut, err = client.Logout(ctx)
	require.NoError(t, err)
	assert.False(t, loggedOut)

	// and writes with the old token are rejected
	resp := doRequest(ctx, t, s.httpClient, http.MethodPost, "/social-links", "", map[string]string{
		"platform": "Github", "username": "huy", "url": "https://github.com/huy",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestLoginRateLimiting() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// simulate login requests brute force attack
	loginRequest := auth.Credentials{
		Username: "test-user",
		Password: "test-pass",
	}

	// suite config allows 10 login attempts per minute, the 11th gets a 429
	for i := 1; i <= 15; i++ {
		resp := doRequest(ctx, t, s.httpClient, http.MethodPost, "/auth/login", "", loginRequest)

		if i <= 10 {
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, "iteration: %d", i)
			assert.Empty(t, resp.Header.Get("Retry-After"), "iteration: %d", i)
		} else {
			require.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "iteration: %d", i)
			retryAfter, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64)
			require.NoError(t, err, "iteration: %d", i)
			assert.True(t, retryAfter > 0, "iteration: %d", i)
		}

		assert.NoError(t, resp.Body.Close())
	}
}
