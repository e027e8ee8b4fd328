// internal/member/service.go
package member

import (
	"context"
	"errors"
)

var (
	ErrDuplicateEmail = errors.New("member with this email already exists")
	ErrMemberNotFound = errors.New("member not found")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

// Service defines the member operations the HTTP endpoint delegates to.
type Service interface {
	Register(ctx context.Context, form Form) error
	Update(ctx context.Context, form Form) error
}
