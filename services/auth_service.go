package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"devconnector/apperror"
	"devconnector/auth"
	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService struct {
	users  UserStore
	tokens *auth.TokenService
	hasher *auth.PasswordHasher
}

func NewAuthService(users UserStore, tokens *auth.TokenService, hasher *auth.PasswordHasher) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (in RegisterInput) validate() error {
	var fields []apperror.FieldError
	if blank(in.Name) {
		fields = append(fields, apperror.FieldError{Param: "name", Msg: "Name is required"})
	}
	if err := validate.Var(auth.NormalizeEmail(in.Email), "required,email"); err != nil {
		fields = append(fields, apperror.FieldError{Param: "email", Msg: "Please include a valid email"})
	}
	switch {
	case len(in.Password) < 6:
		fields = append(fields, apperror.FieldError{Param: "password", Msg: "Please enter a password with 6 or more characters"})
	case len(in.Password) > auth.MaxPasswordBytes:
		fields = append(fields, apperror.FieldError{Param: "password", Msg: "Password must be 72 bytes or fewer"})
	}
	if len(fields) > 0 {
		return apperror.Validation(fields...)
	}
	return nil
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	email := auth.NormalizeEmail(in.Email)

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return "", apperror.DuplicateUser()
	case !errors.Is(err, apperror.ErrNotFound):
		return "", err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	user := &models.User{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Avatar:       auth.AvatarURL(email),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	return s.tokens.Issue(user.ID.Hex())
}

// Login returns a token for valid credentials. An unknown email and a wrong
// password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var fields []apperror.FieldError
	if err := validate.Var(auth.NormalizeEmail(email), "required,email"); err != nil {
		fields = append(fields, apperror.FieldError{Param: "email", Msg: "Please include a valid email"})
	}
	if password == "" {
		fields = append(fields, apperror.FieldError{Param: "password", Msg: "Password is required"})
	}
	if len(fields) > 0 {
		return "", apperror.Validation(fields...)
	}

	user, err := s.users.GetByEmail(ctx, auth.NormalizeEmail(email))
	if errors.Is(err, apperror.ErrNotFound) {
		return "", apperror.InvalidCredentials()
	}
	if err != nil {
		return "", err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", apperror.InvalidCredentials()
		}
		return "", err
	}

	return s.tokens.Issue(user.ID.Hex())
}

// CurrentUser loads the account behind an authenticated request. A token for
// a deleted account is treated as invalid.
func (s *AuthService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.InvalidToken(err)
	}
	return user, err
}
