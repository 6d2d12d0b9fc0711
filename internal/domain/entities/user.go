package entities

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"tour-service/internal/apperrors"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

const (
	PasswordMinLength = 6
	PasswordMaxLength = 25

	passwordResetTTL = 10 * time.Minute
)

var validate = validator.New()

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User is stored in the users collection. Credential fields never leave
// the service: they are excluded from JSON and from default projections.
type User struct {
	Id                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	Photo                string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Password             string             `bson:"password,omitempty" json:"-"`
	PasswordChangedAt    *time.Time         `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty" json:"-"`
	Role                 Role               `bson:"role" json:"role"`
	Active               bool               `bson:"active" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	Id    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Role  Role               `bson:"role,omitempty" json:"role,omitempty"`
}

// NewUser builds an active user with the default role. The password is
// still plaintext until HashPassword runs.
func NewUser(name, email, password string, now time.Time) *User {
	return &User{
		Id:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  password,
		Role:      RoleUser,
		Active:    true,
		CreatedAt: now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) Validate() error {
	var fields []apperrors.FieldError
	if u.Name == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Msg: "Name is required"})
	}
	if err := ValidateEmail(u.Email); err != nil {
		fields = append(fields, apperrors.FieldError{Field: "email", Msg: "Please provide a valid email!"})
	}
	if !u.Role.Valid() {
		fields = append(fields, apperrors.FieldError{Field: "role", Msg: "Role is either: user, guide, lead-guide, admin"})
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("Invalid user data", fields...)
	}
	return nil
}

func ValidateEmail(email string) error {
	return validate.Var(email, "required,email")
}

// ValidatePassword checks length and that the confirmation matches. The
// confirmation is never stored.
func ValidatePassword(password, confirm string) error {
	var fields []apperrors.FieldError
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength || n > PasswordMaxLength {
		fields = append(fields, apperrors.FieldError{Field: "password", Msg: "Password must be between 6 and 25 characters!"})
	}
	if password != confirm {
		fields = append(fields, apperrors.FieldError{Field: "passwordConfirm", Msg: "Passwords do not match"})
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("Invalid password", fields...)
	}
	return nil
}

func (u *User) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// ChangePassword hashes the new password and records the change time.
// Tokens issued at or before changedAt stop working.
func (u *User) ChangePassword(password string, changedAt time.Time) error {
	u.Password = password
	if err := u.HashPassword(); err != nil {
		return err
	}
	u.PasswordChangedAt = &changedAt
	return nil
}

// PasswordChangedAfter reports whether a token issued at issuedAt predates
// the last password change. Both sides carry millisecond precision (Mongo
// dates and the iat_ms claim), and callers stamp the change 1ms early so the
// token issued with it passes. A token issued earlier within that same
// millisecond also passes.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return !u.PasswordChangedAt.Before(issuedAt)
}

// CreatePasswordResetToken stores the sha256 of a fresh random token and
// returns the raw token for delivery.
func (u *User) CreatePasswordResetToken(now time.Time) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	raw := hex.EncodeToString(b)
	expires := now.Add(passwordResetTTL)

	u.PasswordResetToken = HashResetToken(raw)
	u.PasswordResetExpires = &expires
	return raw, nil
}

func (u *User) ClearPasswordReset() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		Id:    u.Id,
		Name:  u.Name,
		Photo: u.Photo,
		Email: u.Email,
		Role:  u.Role,
	}
}
