package usecase

import (
	"context"
	"errors"
	"strings"

	domain "github.com/duality-2/SilkRoad/internal/entity"
)

// Demo sign-in: any non-empty credentials are accepted and nothing but the
// display name and email is kept.

var (
	ErrCredentialsRequired = errors.New("email and password required")
	ErrSignupIncomplete    = errors.New("signup fields missing or passwords differ")
)

func (s *Session) Login(ctx context.Context, email, password string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return s.fail(ErrCredentialsRequired, domain.Failure("Please enter email and password"))
	}
	name, _, _ := strings.Cut(email, "@")
	s.signIn(ctx, domain.User{Name: name, Email: email})
	return s.ok(domain.Success("Logged in successfully")), nil
}

func (s *Session) Signup(ctx context.Context, name, email, password, confirm string) (Result, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" || password != confirm {
		return s.fail(ErrSignupIncomplete, domain.Failure("Please fill all fields and confirm password."))
	}
	s.signIn(ctx, domain.User{Name: name, Email: email})
	return s.ok(domain.Success("Account created and logged in")), nil
}

func (s *Session) Logout(ctx context.Context) (Result, error) {
	s.user = nil
	s.persist(ctx, KeyCurrentUser, s.user)
	return s.ok(domain.Info("Logged out")), nil
}

func (s *Session) signIn(ctx context.Context, u domain.User) {
	s.user = &u
	s.persist(ctx, KeyCurrentUser, s.user)
}
