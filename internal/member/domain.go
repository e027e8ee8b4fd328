// internal/member/domain.go
package member

import (
	"time"

	"github.com/google/uuid"
)

// Form is the payload of a member registration or update request.
type Form struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required,min=2,max=20"`
	Password1       string `json:"password1" validate:"required,min=6,max=20"`
	Password2       string `json:"password2" validate:"required"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,phone"`
	Zipcode         string `json:"zipcode" validate:"omitempty,numeric,len=5"`
	StreetAddress   string `json:"streetAddress" validate:"omitempty,max=100"`
	DetailedAddress string `json:"detailedAddress" validate:"omitempty,max=100"`
}

// Address is the delivery address of a member.
type Address struct {
	Zipcode string `json:"zipcode,omitempty"`
	Street  string `json:"street,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Member represents a registered tryeat member.
type Member struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Address     Address   `json:"address"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Credential holds a member's password hash.
type Credential struct {
	MemberID     uuid.UUID `json:"member_id"`
	PasswordHash string    `json:"-"`
}

func (f Form) address() Address {
	return Address{
		Zipcode: f.Zipcode,
		Street:  f.StreetAddress,
		Detail:  f.DetailedAddress,
	}
}

// Event types appended to the member stream.
const (
	EventMemberRegistered = "MemberRegistered"
	EventMemberUpdated    = "MemberUpdated"
)

// MemberRegisteredEvent is recorded when a new member registers.
type MemberRegisteredEvent struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Address     Address   `json:"address"`
}

// MemberUpdatedEvent is recorded when a member edits their profile.
type MemberUpdatedEvent struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PhoneNumber     string    `json:"phone_number"`
	Address         Address   `json:"address"`
	PasswordChanged bool      `json:"password_changed"`
}
