package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vitrina.shop/internal/ids"
)

// Service wires the user directory, credential verification and the token
// codec into the register/login/federated flows.
type Service struct {
	store Store
	codec *Codec
}

// NewService constructs a Service.
func NewService(store Store, codec *Codec) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: codec is required")
	}
	return &Service{store: store, codec: codec}, nil
}

// Codec exposes the token codec for callers that only need decoding.
func (s *Service) Codec() *Codec { return s.codec }

// Register creates a new account with the default USER role. A taken username
// yields ErrAlreadyExists and leaves the existing record untouched.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username already exists", ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: username already exists", ErrAlreadyExists)
		}
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed token. Unknown username and
// password mismatch collapse into one ErrUnauthorized so responses cannot be
// used for username enumeration.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", time.Time{}, ErrUnauthorized
	}
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, ErrUnauthorized
		}
		return "", time.Time{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, ErrUnauthorized
	}
	return s.codec.Issue(user.Username, user.Role)
}

// Authenticate resolves the principal for a presented bearer token: decode,
// confirm the subject still exists in the directory, then a second subject
// validation against the raw token. Directory failures other than not-found
// propagate as-is; everything else collapses to ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	user, err := s.store.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidToken
		}
		return Principal{}, err
	}
	if !s.codec.Validate(token, user.Username) {
		return Principal{}, ErrInvalidToken
	}
	role := claims.Role
	if strings.TrimSpace(role) == "" {
		role = RoleUser
	}
	return Principal{Subject: user.Username, Role: role}, nil
}

// ResolveOrProvision finds the account whose username equals the federated
// email, creating it on first login. Provisioned accounts get a random
// placeholder password that can never be used for password login.
func (s *Service) ResolveOrProvision(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	user, err := s.store.FindByUsername(ctx, email)
	if err == nil {
		// A password-registered account gets its email recorded on the first
		// federated login.
		if user.Email == "" {
			if err := s.store.UpdateEmail(ctx, user.Username, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           ids.New(),
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := s.store.Create(ctx, u); err != nil {
		// Lost a race with a concurrent first login for the same email.
		if errors.Is(err, ErrAlreadyExists) {
			return s.store.FindByUsername(ctx, email)
		}
		return nil, err
	}
	return u, nil
}

// FederatedLogin resolves or provisions the local account for a third-party
// identity and mints a token for it.
func (s *Service) FederatedLogin(ctx context.Context, email string) (*User, string, time.Time, error) {
	user, err := s.ResolveOrProvision(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, expiresAt, err := s.codec.Issue(user.Username, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}
