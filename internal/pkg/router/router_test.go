package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/u22n/platform/internal/pkg/clock"
	"github.com/u22n/platform/internal/pkg/config"
	"github.com/u22n/platform/internal/pkg/goerror"
	"github.com/u22n/platform/internal/pkg/instrument"
	"github.com/u22n/platform/internal/pkg/jwt"
	"github.com/u22n/platform/internal/pkg/uid"
	"github.com/u22n/platform/internal/pkg/validator"
)

type testRouter struct {
	*Router
	token string
}

func newTestRouter(t *testing.T, cfg config.Config, health func(context.Context) error) *testRouter {
	t.Helper()

	j, err := jwt.NewHS512(jwt.Config{
		Secret:    bytes.Repeat([]byte("k"), 64),
		Issuer:    "platform",
		Audiences: []string{"platform-web"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	token, err := j.Generate(7, "alice")
	require.NoError(t, err)

	r := NewRouter(Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		JWT:        j,
		Instrument: instrument.NewNoop(),
		Health:     health,
	})

	return &testRouter{Router: r, token: token}
}

func (tr *testRouter) do(t *testing.T, method, path, body string, auth bool, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+tr.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	tr.ServeHTTP(rec, req)

	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

type created struct {
	ID string `json:"id"`
}

func (created) StatusCode() int { return http.StatusCreated }
func (created) Message() string { return "created" }

func TestRouter_PublicEndpoints(t *testing.T) {
	tr := newTestRouter(t, nil, nil)

	rec := tr.do(t, http.MethodGet, "/", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = tr.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeJSON(t, rec)["message"])

	rec = tr.do(t, http.MethodGet, "/missing", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_HealthFailure(t *testing.T) {
	tr := newTestRouter(t, nil, func(context.Context) error { return errors.New("db down") })

	rec := tr.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decodeJSON(t, rec)["message"])
}

func TestRouter_Authentication(t *testing.T) {
	tr := newTestRouter(t, nil, nil)
	tr.GET("/me", func(r *Request) (any, error) {
		claims, _ := jwt.FromContext(r.Context())
		return map[string]any{"account_id": claims.AccountID, "username": claims.Username}, nil
	})

	rec := tr.do(t, http.MethodGet, "/me", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = tr.do(t, http.MethodGet, "/me", "", false, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = tr.do(t, http.MethodGet, "/me", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeJSON(t, rec)["data"].(map[string]any)
	assert.InDelta(t, 7, data["account_id"], 0)
	assert.Equal(t, "alice", data["username"])
}

func TestRouter_ResponseCodecs(t *testing.T) {
	tr := newTestRouter(t, nil, nil)
	tr.POST("/created", func(*Request) (any, error) { return created{ID: "1"}, nil })
	tr.POST("/empty", func(*Request) (any, error) { return nil, nil })
	tr.POST("/conflict", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("already there", goerror.CodeConflict)
	})
	tr.POST("/plain", func(*Request) (any, error) { return nil, errors.New("leak") })
	tr.POST("/invalid", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(validator.V10ValidationError{"code": "code is required"})
	})

	rec := tr.do(t, http.MethodPost, "/created", "", true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", decodeJSON(t, rec)["message"])

	rec = tr.do(t, http.MethodPost, "/empty", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	rec = tr.do(t, http.MethodPost, "/conflict", "", true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already there", decodeJSON(t, rec)["message"])

	rec = tr.do(t, http.MethodPost, "/plain", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeJSON(t, rec)["message"])

	rec = tr.do(t, http.MethodPost, "/invalid", "", true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]any{"code": "code is required"}, decodeJSON(t, rec)["error"])
}

func TestRouter_DecodeBody(t *testing.T) {
	tr := newTestRouter(t, nil, nil)
	tr.POST("/echo", func(r *Request) (any, error) {
		var in struct {
			Code string `json:"code"`
		}
		if err := r.DecodeBody(&in); err != nil {
			return nil, err
		}
		return in, nil
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "ok", body: `{"code":"123456"}`, want: http.StatusOK},
		{name: "empty", body: ``, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"code":"1","extra":true}`, want: http.StatusBadRequest},
		{name: "trailing data", body: `{"code":"1"}{}`, want: http.StatusBadRequest},
		{name: "truncated", body: `{"code":`, want: http.StatusBadRequest},
		{name: "too large", body: `{"code":"` + strings.Repeat("x", int(MaxBodyBytes)) + `"}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tr.do(t, http.MethodPost, "/echo", tt.body, true)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_Recoverer(t *testing.T) {
	tr := newTestRouter(t, nil, nil)
	tr.GET("/panic", func(*Request) (any, error) { panic("boom") })

	rec := tr.do(t, http.MethodGet, "/panic", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeJSON(t, rec)["message"])
}

func TestRouter_CorrelationID(t *testing.T) {
	tr := newTestRouter(t, nil, nil)

	rec := tr.do(t, http.MethodGet, "/health", "", false, HeaderCorrelationID, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderCorrelationID))

	rec = tr.do(t, http.MethodGet, "/health", "", false, HeaderRequestID, "req-9")
	assert.Equal(t, "req-9", rec.Header().Get(HeaderCorrelationID))

	rec = tr.do(t, http.MethodGet, "/health", "", false)
	assert.NotEmpty(t, rec.Header().Get(HeaderCorrelationID))
}

func TestNormalizeCID(t *testing.T) {
	assert.Equal(t, "abc", normalizeCID("  abc "))
	assert.Empty(t, normalizeCID("a b"))
	assert.Empty(t, normalizeCID("abc\r\nX-Evil: 1"))
	assert.Len(t, normalizeCID(strings.Repeat("a", 300)), maxCIDLen)
}

func TestRouter_Maintenance(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  maintenance:\n    endpoints: \"/blocked\"\n"))
	require.NoError(t, err)

	tr := newTestRouter(t, cfg, nil)
	tr.GET("/blocked", func(*Request) (any, error) { return "x", nil })
	tr.GET("/open", func(*Request) (any, error) { return "x", nil })

	assert.Equal(t, http.StatusServiceUnavailable, tr.do(t, http.MethodGet, "/blocked", "", true).Code)
	assert.Equal(t, http.StatusOK, tr.do(t, http.MethodGet, "/open", "", true).Code)
}

func TestRouter_MaintenanceAll(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  maintenance:\n    endpoints: \"*\"\n"))
	require.NoError(t, err)

	tr := newTestRouter(t, cfg, nil)
	tr.GET("/open", func(*Request) (any, error) { return "x", nil })

	assert.Equal(t, http.StatusServiceUnavailable, tr.do(t, http.MethodGet, "/open", "", true).Code)
	assert.Equal(t, http.StatusOK, tr.do(t, http.MethodGet, "/health", "", false).Code)
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "true client ip", headers: map[string]string{"True-Client-IP": "1.1.1.1"}, remote: "9.9.9.9:80", want: "1.1.1.1"},
		{name: "forwarded list", headers: map[string]string{"X-Forwarded-For": " 2.2.2.2 , 3.3.3.3"}, remote: "9.9.9.9:80", want: "2.2.2.2"},
		{name: "invalid header falls back", headers: map[string]string{"X-Real-IP": "nope"}, remote: "9.9.9.9:80", want: "9.9.9.9"},
		{name: "nothing usable", remote: "garbage", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, realIP(r))
		})
	}
}
