package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mjaffal21/devcamper-api/internal/mailer"
	"github.com/mjaffal21/devcamper-api/internal/users"
)

var (
	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike, so login failures are not enumerable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidResetToken covers wrong, expired, and already-consumed reset
	// tokens with one signal.
	ErrInvalidResetToken = errors.New("invalid or expired token")
	// ErrDeliveryFailed means the reset email could not be sent. The reset
	// fields are cleared before this is returned.
	ErrDeliveryFailed = errors.New("email could not be sent")
)

// Service orchestrates the credential lifecycle over the store, the mailer
// and the token service.
type Service struct {
	store       users.Store
	mailer      mailer.Mailer
	tokens      *TokenService
	resetExpire time.Duration
}

// NewService wires the authentication service.
func NewService(store users.Store, m mailer.Mailer, tokens *TokenService, resetExpire time.Duration) *Service {
	return &Service{store: store, mailer: m, tokens: tokens, resetExpire: resetExpire}
}

// Tokens exposes the token service for the guard middleware.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Store exposes the credential store for the guard middleware.
func (s *Service) Store() users.Store {
	return s.store
}

// Register creates a user with a hashed password and returns a session token
// bound to the new identity. A duplicate email propagates
// users.ErrDuplicateEmail from the store.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (*users.User, string, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	if role == "" {
		role = users.RoleUser
	}
	user := &users.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a session token. Lookup failure and
// password mismatch produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, string, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword re-verifies the current password before accepting the new
// one, then issues a fresh session token.
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, newPassword string) (string, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !CheckPassword(current, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateFields(ctx, userID, map[string]interface{}{
		"password_hash": hash,
	}); err != nil {
		return "", err
	}
	return s.tokens.Issue(userID)
}

// UpdateDetails changes the user's name and email.
func (s *Service) UpdateDetails(ctx context.Context, userID uint, name, email string) (*users.User, error) {
	if err := s.store.UpdateFields(ctx, userID, map[string]interface{}{
		"name":  name,
		"email": email,
	}); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, userID)
}

// ForgotPassword generates a reset token for the given email, stores its hash
// and expiry, and mails the plaintext embedded in resetURL. If delivery
// fails, the reset fields are cleared before ErrDeliveryFailed is returned;
// the record never stays pending after a failed send. Returns
// users.ErrNotFound for an unknown email.
func (s *Service) ForgotPassword(ctx context.Context, email string, resetURL func(token string) string) error {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	plaintext, digest, err := NewResetToken()
	if err != nil {
		return err
	}
	expire := time.Now().Add(s.resetExpire)
	if err := s.store.UpdateFields(ctx, user.ID, map[string]interface{}{
		"reset_password_hash":   digest,
		"reset_password_expire": expire,
	}); err != nil {
		return err
	}

	body := fmt.Sprintf("You are receiving this email because you (or someone else) has requested "+
		"the reset of a password. Please make a PUT request to:\n\n%s", resetURL(plaintext))

	if err := s.mailer.Send(user.Email, "Password reset token", body); err != nil {
		log.Printf("password reset delivery to user %d failed: %v", user.ID, err)
		if clearErr := s.clearResetFields(ctx, user.ID); clearErr != nil {
			log.Printf("clearing reset fields for user %d failed: %v", user.ID, clearErr)
		}
		return ErrDeliveryFailed
	}
	return nil
}

// ResetPassword consumes a reset token: the candidate is hashed, matched
// against a still-valid stored digest, the password is replaced, the reset
// fields are cleared, and a fresh session token is issued (auto-login).
func (s *Service) ResetPassword(ctx context.Context, candidate, newPassword string) (*users.User, string, error) {
	user, err := s.store.FindByResetHash(ctx, HashResetToken(candidate), time.Now())
	if err != nil {
		return nil, "", ErrInvalidResetToken
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, "", err
	}
	if err := s.store.UpdateFields(ctx, user.ID, map[string]interface{}{
		"password_hash":         hash,
		"reset_password_hash":   nil,
		"reset_password_expire": nil,
	}); err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) clearResetFields(ctx context.Context, userID uint) error {
	return s.store.UpdateFields(ctx, userID, map[string]interface{}{
		"reset_password_hash":   nil,
		"reset_password_expire": nil,
	})
}
