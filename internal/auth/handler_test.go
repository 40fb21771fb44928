package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*mux.Router, redismock.ClientMock) {
	t.Helper()
	authService, mock := newTestService(t, time.Hour)
	r := mux.NewRouter()
	NewHandler(authService).SetupRoutes(r.PathPrefix("/api").Subrouter())
	return r, mock
}

func TestHandler_SetupRoutes(t *testing.T) {
	r, _ := setupTestRouter(t)
	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"login":          {name: "login", path: "/api/auth/login", method: "POST"},
		"login-options":  {name: "login", path: "/api/auth/login", method: "OPTIONS"},
		"logout":         {name: "logout", path: "/api/auth/logout", method: "GET"},
		"logout-options": {name: "logout", path: "/api/auth/logout", method: "OPTIONS"},
	} {
		req, err := http.NewRequest(route.method, route.path, nil)
		require.NoError(t, err)
		assert.True(t, r.Get(route.name).Match(req, &mux.RouteMatch{}), caseName)
	}
}

func TestHandler_Login(t *testing.T) {
	r, mock := setupTestRouter(t)
	mock.Regexp().ExpectSet(sessionKeyPrefix+"test_token", `\d+`, time.Hour).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, "test_token").SetVal(1)

	body := fmt.Sprintf(`{"username":%q,"password":%q}`, testUsername, testPassword)
	req, err := http.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "test_token", resp.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Login_BadRequests(t *testing.T) {
	r, mock := setupTestRouter(t)
	for caseName, tc := range map[string]struct {
		body    string
		message string
	}{
		"wrong password":   {body: `{"username":"testuser","password":"nope"}`, message: "wrong credentials"},
		"wrong username":   {body: `{"username":"root","password":"testpass"}`, message: "wrong credentials"},
		"missing password": {body: `{"username":"testuser"}`, message: "username and password are required"},
		"unknown field":    {body: `{"user":"testuser"}`, message: `unknown field "user"`},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest("POST", "/api/auth/login", strings.NewReader(tc.body))
			require.NoError(t, err)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tc.message, resp["error"])
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Logout(t *testing.T) {
	r, mock := setupTestRouter(t)

	req, err := http.NewRequest("GET", "/api/auth/logout", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	sessionKey := sessionKeyPrefix + "abc"
	mock.ExpectGet(sessionKey).SetVal(fmt.Sprintf("%d", time.Now().Unix()))
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, "abc").SetVal(1)
	mock.ExpectGet(sessionKey).RedisNil()

	for _, want := range []bool{true, false} {
		req, err := http.NewRequest("GET", "/api/auth/logout", nil)
		require.NoError(t, err)
		req.Header.Set(TokenHeader, "abc")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp LogoutResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, want, resp.LoggedOut)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
