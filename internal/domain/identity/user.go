package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/retail/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the coarse permission level of a till user
type Role string

const (
	RoleCashier Role = "CASHIER" // sells and views stock
	RoleManager Role = "MANAGER" // also restocks, adjusts and resolves alerts
	RoleAdmin   Role = "ADMIN"   // also deactivates products and purges history
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleCashier, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// rank orders roles so that a higher role includes the lower ones
func (r Role) rank() int {
	switch r {
	case RoleCashier:
		return 1
	case RoleManager:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

// Includes reports whether r grants at least the permissions of other
func (r Role) Includes(other Role) bool {
	return r.rank() >= other.rank() && other.rank() > 0
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"      // Locked due to failed attempts
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	letterPattern   = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// User is a person who operates the till. Users are the actors recorded on
// sales and stock movements.
type User struct {
	shared.BaseAggregateRoot
	Username       string
	DisplayName    string
	PasswordHash   string
	Role           Role
	Status         UserStatus
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewUser creates an active user. cost is the bcrypt work factor; values
// outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewUser(username, displayName, password string, role Role, cost int) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Unknown role: "+string(role))
	}

	hash, err := hashPassword(password, cost)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to hash password", err)
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		DisplayName:       strings.TrimSpace(displayName),
		PasswordHash:      hash,
		Role:              role,
		Status:            UserStatusActive,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(newPassword string, cost int) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword, cost)
	if err != nil {
		return shared.WrapDomainError(shared.CodePersistence, "Failed to hash password", err)
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// Deactivate prevents further logins
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError(shared.CodeInvalidState, "User is already deactivated")
	}
	u.Status = UserStatusDeactivated
	u.Touch()
	return nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
		u.LockedUntil = nil
	}
	u.Touch()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account was locked by this attempt.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.Touch()

	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.Status = UserStatusLocked
		u.LockedUntil = &until
		return true
	}
	return false
}

// IsLocked returns true if the user is locked and the lock has not expired
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	return u.LockedUntil == nil || time.Now().Before(*u.LockedUntil)
}

// CanLogin returns true if the user may authenticate
func (u *User) CanLogin() bool {
	return u.Status != UserStatusDeactivated && !u.IsLocked()
}

// Actor returns the identity recorded on the user's operations
func (u *User) Actor() shared.Actor {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return shared.Actor{ID: u.ID, Name: name}
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError(shared.CodeValidation, "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError(shared.CodeValidation, "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError(shared.CodeValidation, "Username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError(shared.CodeValidation, "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError(shared.CodeValidation, "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError(shared.CodeValidation, "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores everything past 72 bytes
		return shared.NewDomainError(shared.CodeValidation, "Password cannot exceed 72 characters")
	}
	if !letterPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return shared.NewDomainError(shared.CodeValidation, "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
