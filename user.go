package valutatrade

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 4

// passwordCost is the bcrypt cost used to hash new passwords.
var passwordCost = bcrypt.DefaultCost

// User is a registered trader.
type User struct {
	ID           int
	Username     string
	PasswordHash string // salted bcrypt hash
	RegisteredAt time.Time
}

// NewUser returns a user with a freshly hashed password.
func NewUser(id int, username, password string, registeredAt time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	u := &User{ID: id, Username: username, RegisteredAt: registeredAt}
	if err := u.ChangePassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the password hash.
func (u *User) ChangePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return fmt.Errorf("cannot hash password: %w", err)
	}
	u.PasswordHash = string(h)
	return nil
}

// VerifyPassword reports whether password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Info returns a one line description of u.
func (u *User) Info() string {
	return fmt.Sprintf("ID: %d, Username: %s, Registered: %s", u.ID, u.Username, u.RegisteredAt.Format("2006-01-02 15:04"))
}
