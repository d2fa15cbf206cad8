// Package service contains the business rules. Handlers parse HTTP and
// delegate here; repositories do storage. Services validate input, enforce
// the auth rules, and return apperror values for the handler to map.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/placementcell/drivetrack/internal/apperror"
	"github.com/placementcell/drivetrack/internal/auth"
	"github.com/placementcell/drivetrack/internal/model"
	"github.com/placementcell/drivetrack/internal/repository"
)

// AuthService owns signup and signin.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with injected dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the stored user with the issued session token.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignupInput is the signup payload. Username is normalized (trimmed,
// lowercased) before validation, matching how it is stored.
type SignupInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	LinkedinID  string `json:"linkedinId"`
	TeamName    string `json:"teamName"`
	Position    string `json:"position"`
}

// Validate checks the payload shape. Field rules mirror the stored schema:
// email-shaped username 3-50 chars, password at least 6, all profile fields
// present and size-bounded.
func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(3, 50), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.PhoneNumber, validation.Required, validation.Length(1, 50)),
		validation.Field(&in.LinkedinID, validation.Required),
		validation.Field(&in.TeamName, validation.Required),
		validation.Field(&in.Position, validation.Required, validation.Length(1, 50)),
	)
}

// Signup registers a new user and issues a session token.
//
// Order of checks: shape validation, then the case-insensitive username
// conflict check, then hashing and the write. The hash is derived exactly
// once, here; a hashing failure aborts the write.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.normalize()

	if err := in.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	_, err := s.users.GetByUsername(ctx, in.Username)
	if err == nil {
		return nil, apperror.Conflict("Existing user")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking username %q: %w", in.Username, err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		LinkedinID:   in.LinkedinID,
		TeamName:     in.TeamName,
		Position:     in.Position,
	}

	// The unique index backs up the lookup above, so a racing signup with
	// the same username still surfaces as a conflict.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", in.Username, err)
	}

	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID.Hex()),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// SigninInput is the signin payload.
type SigninInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the payload shape before any store lookup.
func (in SigninInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
	)
}

// Signin authenticates a user and issues a session token.
//
// Existence is checked before the password, and the two failures stay
// distinguishable: "Not a registered user" vs "Password incorrect". Both
// map to 401.
func (s *AuthService) Signin(ctx context.Context, in SigninInput) (*AuthResult, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))

	if err := in.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Not a registered user")
		}
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", in.Username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		return nil, apperror.Unauthorized("Password incorrect")
	}

	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID.Hex()))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for a verified token subject.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// ListUsers returns all users as public projections.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: listing users: %w", err)
	}

	public := make([]model.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}

	return public, nil
}

func (in *SignupInput) normalize() {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.LinkedinID = strings.TrimSpace(in.LinkedinID)
	in.TeamName = strings.TrimSpace(in.TeamName)
	in.Position = strings.TrimSpace(in.Position)
}

// invalidInput converts an ozzo validation error into the domain taxonomy.
func invalidInput(err error) error {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			return apperror.ValidationFailed(field, fmt.Sprintf("%s: %v", field, fieldErr))
		}
	}
	return apperror.ValidationFailed("", err.Error())
}
