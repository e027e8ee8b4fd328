// internal/member/implementation.go
package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"tryeat/internal/eventstore"
)

const aggregateType = "member"

// service implements the Service interface on top of the event store and
// the members/credentials read model.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
	limiter    *rate.Limiter
}

// NewService creates a member service. A nil limiter disables rate limiting.
func NewService(es *eventstore.EventStore, db *sql.DB, limiter *rate.Limiter) Service {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &service{
		eventStore: es,
		db:         db,
		limiter:    limiter,
	}
}

// Register creates a new member from form.
func (s *service) Register(ctx context.Context, form Form) error {
	if !s.limiter.Allow() {
		return ErrRateLimited
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE email = $1)`, form.Email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrDuplicateEmail
	}

	passwordHash, err := hashPassword(form.Password1)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	m := &Member{
		ID:          uuid.New(),
		Email:       form.Email,
		Name:        form.Name,
		PhoneNumber: form.PhoneNumber,
		Address:     form.address(),
		Version:     1,
	}

	event, err := eventstore.NewEvent(EventMemberRegistered, MemberRegisteredEvent{
		ID:          m.ID,
		Email:       m.Email,
		Name:        m.Name,
		PhoneNumber: m.PhoneNumber,
		Address:     m.Address,
	})
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventStore.AppendTx(ctx, tx, m.ID, aggregateType, 0, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	if err := insertMember(ctx, tx, m, &Credential{MemberID: m.ID, PasswordHash: passwordHash}); err != nil {
		if eventstore.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update read model: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertMember(ctx context.Context, tx *sql.Tx, m *Member, cred *Credential) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO members (id, email, name, phone_number, zipcode, street_address, detailed_address, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.Email, m.Name, m.PhoneNumber, m.Address.Zipcode, m.Address.Street, m.Address.Detail, m.Version)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (member_id, password_hash)
		VALUES ($1, $2)
	`, cred.MemberID, cred.PasswordHash)
	return err
}

// Update edits the profile of the member identified by form.Email.
func (s *service) Update(ctx context.Context, form Form) error {
	if !s.limiter.Allow() {
		return ErrRateLimited
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		id      uuid.UUID
		version int
		current string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT m.id, m.version, c.password_hash
		FROM members m
		JOIN credentials c ON c.member_id = m.id
		WHERE m.email = $1
		FOR UPDATE OF m
	`, form.Email).Scan(&id, &version, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}

	same, err := verifyPassword(form.Password1, current)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}

	event, err := eventstore.NewEvent(EventMemberUpdated, MemberUpdatedEvent{
		ID:              id,
		Name:            form.Name,
		PhoneNumber:     form.PhoneNumber,
		Address:         form.address(),
		PasswordChanged: !same,
	})
	if err != nil {
		return err
	}

	if err := s.eventStore.AppendTx(ctx, tx, id, aggregateType, version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	addr := form.address()
	_, err = tx.ExecContext(ctx, `
		UPDATE members
		SET name = $1, phone_number = $2, zipcode = $3, street_address = $4, detailed_address = $5,
		    version = $6, updated_at = NOW()
		WHERE id = $7
	`, form.Name, form.PhoneNumber, addr.Zipcode, addr.Street, addr.Detail, version+1, id)
	if err != nil {
		return fmt.Errorf("failed to update read model: %w", err)
	}

	if !same {
		passwordHash, err := hashPassword(form.Password1)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE credentials SET password_hash = $1 WHERE member_id = $2`, passwordHash, id)
		if err != nil {
			return fmt.Errorf("failed to update credentials: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
