// Package users is the credential store: registration, password
// verification and identity lookup.
package users

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"goal-tracker-backend/internal/apperr"
)

const (
	minPasswordLen = 6
	// bcrypt only looks at the first 72 bytes and rejects longer input.
	maxPasswordBytes = 72

	msgAllRequired       = "All fields are required"
	msgInvalidEmail      = "Invalid email address"
	msgPasswordTooShort  = "Password must be at least 6 characters long"
	msgPasswordTooLong   = "Password must be at most 72 bytes"
	msgEmailTaken        = "Email already registered"
	msgUsernameTaken     = "Username already taken"
	msgInvalidCredential = "Invalid credentials"
)

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

type Service struct {
	repo   Repository
	hasher Hasher
	newID  func() string
	now    func() time.Time

	// dummyHash is compared against when the email is unknown so both
	// failure paths pay for one bcrypt comparison.
	dummyHash string
}

func NewService(repo Repository, hasher Hasher) *Service {
	s := &Service{
		repo:   repo,
		hasher: hasher,
		newID:  func() string { return uuid.NewString() },
		now:    time.Now,
	}
	if h, err := hasher.Hash("not-a-real-password"); err == nil {
		s.dummyHash = h
	}
	return s
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the input, hashes the password and stores a new
// identity.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)
	password = strings.TrimSpace(password)

	if username == "" || email == "" || password == "" {
		return nil, apperr.Validation(msgAllRequired)
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.Validation(msgInvalidEmail)
	}
	if len([]rune(password)) < minPasswordLen {
		return nil, apperr.Validation(msgPasswordTooShort)
	}
	if len(password) > maxPasswordBytes {
		return nil, apperr.Validation(msgPasswordTooLong)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Duplicate(msgEmailTaken, ErrDuplicateEmail)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation(msgPasswordTooLong)
		}
		return nil, err
	}

	u := &Identity{
		ID:           s.newID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return nil, apperr.Duplicate(msgEmailTaken, err)
		case errors.Is(err, ErrDuplicateUsername):
			return nil, apperr.Duplicate(msgUsernameTaken, err)
		}
		return nil, err
	}

	return u, nil
}

// Verify returns the identity for email when password matches. An
// unknown email and a wrong password produce the same error.
func (s *Service) Verify(ctx context.Context, email, password string) (*Identity, error) {
	email = NormalizeEmail(email)
	password = strings.TrimSpace(password)

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if s.dummyHash != "" {
				_, _ = s.hasher.Verify(password, s.dummyHash)
			}
			return nil, apperr.New(apperr.KindInvalidCredential, msgInvalidCredential)
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.KindInvalidCredential, msgInvalidCredential)
	}

	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Identity, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return u, nil
}

// Exists reports whether an identity with id is stored.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
