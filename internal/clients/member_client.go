// internal/clients/member_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tryeat/internal/member"
)

// ValidationError is returned when the member API rejects a form with 400.
type ValidationError struct {
	Errors member.ValidationErrors
}

func (e *ValidationError) Error() string {
	return "member validation failed: " + e.Errors.Join("; ")
}

// MemberClient calls the member HTTP API. It satisfies member.Service, so
// other services can register and update members remotely.
type MemberClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ member.Service = (*MemberClient)(nil)

func NewMemberClient(baseURL string) *MemberClient {
	return &MemberClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *MemberClient) Register(ctx context.Context, form member.Form) error {
	return c.send(ctx, http.MethodPost, "/api/members/new", form)
}

func (c *MemberClient) Update(ctx context.Context, form member.Form) error {
	return c.send(ctx, http.MethodPut, "/api/members/update", form)
}

func (c *MemberClient) send(ctx context.Context, method, path string, form member.Form) error {
	body, err := json.Marshal(form)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return nil
	case http.StatusBadRequest:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		var er member.ErrorsResponse
		if json.Unmarshal(raw, &er) == nil && er.Errors.HasErrors() {
			return &ValidationError{Errors: er.Errors}
		}
		return fmt.Errorf("bad request: %s", raw)
	case http.StatusConflict:
		return member.ErrDuplicateEmail
	case http.StatusNotFound:
		return member.ErrMemberNotFound
	case http.StatusTooManyRequests:
		return member.ErrRateLimited
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
