package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrUserNameTaken       = errors.New("user name already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordUnchanged   = errors.New("new password must differ from the current one")
	ErrSocialAccount       = errors.New("password operations are not available for social accounts")
	ErrInvalidProvider     = errors.New("invalid provider (must be google, facebook, or apple)")
	ErrInvalidResetCode    = errors.New("invalid or expired reset code")
	ErrUserNameRequired    = errors.New("user name cannot be empty")
	ErrUserNameTooLong     = errors.New("user name is too long (max 50 chars)")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderApple    = "apple"

	MaxUserNameLen = 50
	ResetCodeTTL   = 10 * time.Minute
)

type User struct {
	ID                 string     `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	FirstName          string     `json:"first_name" db:"first_name"`
	LastName           string     `json:"last_name" db:"last_name"`
	UserName           string     `json:"user_name" db:"user_name"`
	Bio                string     `json:"bio,omitempty" db:"bio"`
	AlcoholType        string     `json:"alcohol_type,omitempty" db:"alcohol_type"`
	Improvement        []string   `json:"improvement,omitempty" db:"-"`
	Provider           string     `json:"provider" db:"provider"`
	ProviderID         string     `json:"-" db:"provider_id"`
	Goal               *Goal      `json:"goal,omitempty" db:"-"`
	ResetCodeHash      *string    `json:"-" db:"reset_code_hash"`
	ResetCodeExpiresAt *time.Time `json:"-" db:"reset_code_expires_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

func NewUser(id, email string) (*User, error) {
	email = strings.TrimSpace(email)

	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	now := time.Now().UTC()
	return &User{
		ID:        id,
		Email:     strings.ToLower(email),
		Provider:  ProviderLocal,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func NewSocialUser(id, email, provider, providerID string) (*User, error) {
	if !IsSocialProvider(provider) {
		return nil, ErrInvalidProvider
	}
	if strings.TrimSpace(providerID) == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := NewUser(id, email)
	if err != nil {
		return nil, err
	}
	u.Provider = provider
	u.ProviderID = providerID
	return u, nil
}

func IsSocialProvider(p string) bool {
	switch p {
	case ProviderGoogle, ProviderFacebook, ProviderApple:
		return true
	}
	return false
}

func (u *User) IsLocal() bool {
	return u.Provider == "" || u.Provider == ProviderLocal
}

func (u *User) SetUserName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrUserNameRequired
	}
	if utf8.RuneCountInString(name) > MaxUserNameLen {
		return ErrUserNameTooLong
	}
	u.UserName = name
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) SetGoal(g *Goal) {
	u.Goal = g
	u.UpdatedAt = time.Now().UTC()
}

func (u *User) SetPassword(plainPassword string) error {
	if utf8.RuneCountInString(plainPassword) < 8 {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), 12)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) CheckPassword(plainPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainPassword))
}

// IssueResetCode stores a hash of a fresh 6-digit code and returns the
// plain code for delivery.
func (u *User) IssueResetCode(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	hash := hashResetCode(code)
	expires := now.UTC().Add(ResetCodeTTL)
	u.ResetCodeHash = &hash
	u.ResetCodeExpiresAt = &expires
	u.UpdatedAt = now.UTC()
	return code, nil
}

func (u *User) VerifyResetCode(code string, now time.Time) error {
	if u.ResetCodeHash == nil || u.ResetCodeExpiresAt == nil {
		return ErrInvalidResetCode
	}
	if now.After(*u.ResetCodeExpiresAt) {
		return ErrInvalidResetCode
	}
	given := hashResetCode(strings.TrimSpace(code))
	if subtle.ConstantTimeCompare([]byte(given), []byte(*u.ResetCodeHash)) != 1 {
		return ErrInvalidResetCode
	}
	return nil
}

func (u *User) ClearResetCode() {
	u.ResetCodeHash = nil
	u.ResetCodeExpiresAt = nil
}

func hashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
