package clients

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryeat/internal/member"
)

type recordingService struct {
	err     error
	forms   []member.Form
	updates int
}

func (s *recordingService) Register(ctx context.Context, form member.Form) error {
	s.forms = append(s.forms, form)
	return s.err
}

func (s *recordingService) Update(ctx context.Context, form member.Form) error {
	s.updates++
	s.forms = append(s.forms, form)
	return s.err
}

func newTestServer(t *testing.T, svc member.Service) *MemberClient {
	t.Helper()
	r := chi.NewRouter()
	member.NewHandler(svc, member.Options{}).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewMemberClient(srv.URL + "/")
}

func form() member.Form {
	return member.Form{
		Email:       "eater@tryeat.shop",
		Name:        "홍길동",
		Password1:   "abc123",
		Password2:   "abc123",
		PhoneNumber: "010-1234-5678",
	}
}

func TestMemberClientRegisterAndUpdate(t *testing.T) {
	svc := &recordingService{}
	client := newTestServer(t, svc)

	require.NoError(t, client.Register(context.Background(), form()))
	require.NoError(t, client.Update(context.Background(), form()))

	assert.Len(t, svc.forms, 2)
	assert.Equal(t, 1, svc.updates)
}

func TestMemberClientValidationError(t *testing.T) {
	svc := &recordingService{}
	client := newTestServer(t, svc)

	f := form()
	f.Password2 = "xyz987"
	err := client.Register(context.Background(), f)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, member.ValidationErrors{
		{Field: "password2", Message: member.MsgPasswordMismatch},
	}, verr.Errors)
	assert.Empty(t, svc.forms)
}

func TestMemberClientMapsServiceErrors(t *testing.T) {
	for _, want := range []error{member.ErrDuplicateEmail, member.ErrMemberNotFound, member.ErrRateLimited} {
		client := newTestServer(t, &recordingService{err: want})
		assert.ErrorIs(t, client.Register(context.Background(), form()), want)
	}

	client := newTestServer(t, &recordingService{err: errors.New("db down")})
	err := client.Update(context.Background(), form())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
