package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrNotFound signals a missing user record.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail propagates the store's uniqueness constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the credential store. Emails are case-normalized on write and
// lookup; uniqueness is enforced by the database.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	// FindByResetHash returns the user whose stored reset-token hash matches
	// and whose expiry is still after now. Expired and unknown hashes are
	// indistinguishable: both return ErrNotFound.
	FindByResetHash(ctx context.Context, hash string, now time.Time) (*User, error)
	Create(ctx context.Context, user *User) error
	// UpdateFields applies a partial single-record update.
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates the GORM-backed credential store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *gormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindByID(ctx context.Context, id uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindByResetHash(ctx context.Context, hash string, now time.Time) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).
		Where("reset_password_hash = ? AND reset_password_expire > ?", hash, now).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) Create(ctx context.Context, user *User) error {
	user.Email = NormalizeEmail(user.Email)
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *gormStore) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = NormalizeEmail(email)
	}
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
