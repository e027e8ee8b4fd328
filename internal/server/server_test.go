package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryeat/internal/member"
)

type stubService struct {
	registered int
}

func (s *stubService) Register(ctx context.Context, form member.Form) error {
	s.registered++
	return nil
}

func (s *stubService) Update(ctx context.Context, form member.Form) error { return nil }

func TestHealthz(t *testing.T) {
	h := NewRouter(zerolog.New(io.Discard), member.NewHandler(&stubService{}, member.Options{}))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body.String())
}

func TestRouterServesMembers(t *testing.T) {
	svc := &stubService{}
	var logs bytes.Buffer
	h := NewRouter(zerolog.New(&logs), member.NewHandler(svc, member.Options{}))

	body, err := json.Marshal(member.Form{
		Email:       "eater@tryeat.shop",
		Name:        "홍길동",
		Password1:   "abc123",
		Password2:   "abc123",
		PhoneNumber: "01012345678",
	})
	require.NoError(t, err)

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/members/new", bytes.NewReader(body)))

	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, 1, svc.registered)
	assert.NotEmpty(t, res.Header().Get("X-Request-Id"))
	assert.Contains(t, logs.String(), `"path":"/api/members/new"`)
	assert.Contains(t, logs.String(), `"status":201`)
}
