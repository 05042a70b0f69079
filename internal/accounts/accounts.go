// Package accounts registers users, issues bearer tokens and serves user profiles.
package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/petermazzocco/foodgram/internal/apperr"
	"github.com/petermazzocco/foodgram/internal/identity"
	"github.com/petermazzocco/foodgram/internal/resolver"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/petermazzocco/foodgram/internal/views"
	"github.com/petermazzocco/foodgram/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxEmailLen      = 254
	maxNameLen       = 150
	minPasswordLen   = 8
	tokenBytes       = 32
	reservedUsername = "me"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type Service struct {
	db  *gorm.DB
	res *resolver.Resolver
	// cost is the bcrypt work factor
	cost int
}

func New(db *gorm.DB, res *resolver.Resolver) *Service {
	return &Service{db: db, res: res, cost: bcrypt.DefaultCost}
}

// Register validates and stores a new user with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*views.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.Wrap(err, "hash password")
	}

	u := models.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.createUser(ctx, &u); err != nil {
		return nil, err
	}
	v := views.NewUser(u, false)
	return &v, nil
}

func (s *Service) createUser(ctx context.Context, u *models.User) error {
	if err := store.CreateUser(ctx, s.db, u); err != nil {
		if store.IsDuplicate(err) {
			taken, lookupErr := store.UsernameTaken(ctx, s.db, u.Username)
			if lookupErr == nil && taken {
				return apperr.Conflicting("username", "username_taken", "a user with this username already exists")
			}
			return apperr.Conflicting("email", "email_taken", "a user with this email already exists")
		}
		return apperr.Wrap(err, "create user")
	}
	return nil
}

// Login checks the credentials and issues a new bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := store.FindUserByEmail(ctx, s.db, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return "", invalidCredentials()
	}
	if err != nil {
		return "", apperr.Wrap(err, "load user")
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", invalidCredentials()
	}
	return s.issueToken(ctx, u.ID)
}

// LoginExternal signs in a user verified by an external provider, creating the account on first use.
func (s *Service) LoginExternal(ctx context.Context, email, firstName, lastName string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Invalid("email", "invalid_email", "provider returned no usable email")
	}

	u, err := store.FindUserByEmail(ctx, s.db, email)
	if errors.Is(err, store.ErrNotFound) {
		u = &models.User{
			Email:     email,
			Username:  email,
			FirstName: truncate(firstName, maxNameLen),
			LastName:  truncate(lastName, maxNameLen),
			Role:      models.RoleUser,
		}
		if err := s.createUser(ctx, u); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", apperr.Wrap(err, "load user")
	}
	return s.issueToken(ctx, u.ID)
}

// Logout revokes the token. Revoking an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if _, err := store.DeleteToken(ctx, s.db, digest(token)); err != nil {
		return apperr.Wrap(err, "revoke token")
	}
	return nil
}

// Authenticate resolves a bearer token to the requester it was issued to.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Requester, error) {
	if token == "" {
		return identity.Anonymous(), apperr.Unauthorized("invalid token")
	}
	u, err := store.FindTokenOwner(ctx, s.db, digest(token))
	if errors.Is(err, store.ErrNotFound) {
		return identity.Anonymous(), apperr.Unauthorized("invalid token")
	}
	if err != nil {
		return identity.Anonymous(), apperr.Wrap(err, "load token")
	}
	return identity.Requester{UserID: u.ID, Role: u.Role}, nil
}

// SetPassword replaces the requester's password after checking the current one.
func (s *Service) SetPassword(ctx context.Context, req identity.Requester, current, next string) error {
	if !req.IsAuthenticated() {
		return apperr.Unauthorized("authentication required")
	}
	u, err := store.FindUser(ctx, s.db, req.UserID)
	if err != nil {
		return apperr.Wrap(err, "load user")
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return apperr.Invalid("current_password", "invalid_password", "current password is incorrect")
	}
	if err := checkPassword("new_password", next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return apperr.Wrap(err, "hash password")
	}
	if err := store.UpdatePasswordHash(ctx, s.db, u.ID, string(hash)); err != nil {
		return apperr.Wrap(err, "update password")
	}
	return nil
}

// GetUser returns the profile of id with is_subscribed resolved for the requester.
func (s *Service) GetUser(ctx context.Context, req identity.Requester, id uint) (*views.User, error) {
	u, err := store.FindUser(ctx, s.db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Missing("user", "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load user")
	}
	out, err := s.res.Users(ctx, req, []models.User{*u})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *Service) Me(ctx context.Context, req identity.Requester) (*views.User, error) {
	if !req.IsAuthenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	return s.GetUser(ctx, req, req.UserID)
}

func (s *Service) ListUsers(ctx context.Context, req identity.Requester, w store.Window) ([]views.User, int64, error) {
	users, total, err := store.ListUsers(ctx, s.db, w)
	if err != nil {
		return nil, 0, apperr.Wrap(err, "list users")
	}
	out, err := s.res.Users(ctx, req, users)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Service) issueToken(ctx context.Context, userID uint) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", apperr.Wrap(err, "generate token")
	}
	token := hex.EncodeToString(raw)
	if err := store.CreateToken(ctx, s.db, &models.Token{Digest: digest(token), UserID: userID}); err != nil {
		return "", apperr.Wrap(err, "store token")
	}
	return token, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func validateRegistration(in RegisterInput) error {
	if in.Email == "" {
		return apperr.Invalid("email", "required", "email is required")
	}
	if len(in.Email) > maxEmailLen {
		return apperr.Invalid("email", "max_length", fmt.Sprintf("email must be at most %d characters", maxEmailLen))
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return apperr.Invalid("email", "invalid_email", "enter a valid email address")
	}
	if in.Username == "" {
		return apperr.Invalid("username", "required", "username is required")
	}
	if utf8.RuneCountInString(in.Username) > maxNameLen || !usernamePattern.MatchString(in.Username) {
		return apperr.Invalid("username", "invalid_username", "username may contain only letters, digits and @/./+/-/_")
	}
	if strings.EqualFold(in.Username, reservedUsername) {
		return apperr.Invalid("username", "reserved_username", "this username is reserved")
	}
	names := []struct{ field, value string }{{"first_name", in.FirstName}, {"last_name", in.LastName}}
	for _, n := range names {
		field, v := n.field, n.value
		if v == "" {
			return apperr.Invalid(field, "required", field+" is required")
		}
		if utf8.RuneCountInString(v) > maxNameLen {
			return apperr.Invalid(field, "max_length", fmt.Sprintf("%s must be at most %d characters", field, maxNameLen))
		}
	}
	return checkPassword("password", in.Password)
}

func checkPassword(field, password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return apperr.Invalid(field, "password_too_short", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	return nil
}

func invalidCredentials() error {
	return apperr.Invalid("credentials", "invalid_credentials", "unable to log in with provided credentials")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
