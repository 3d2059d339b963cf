package domain

import (
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	return nil
}

// IsAdmin is always derived from Role; there is no separate flag to drift out of sync.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

type AuthStatus int

const (
	Anonymous AuthStatus = iota
	AuthenticatedUser
	AuthenticatedAdmin
)

// StatusFor derives the auth status from the user's role; nil means anonymous.
func StatusFor(u *User) AuthStatus {
	switch {
	case u == nil:
		return Anonymous
	case u.IsAdmin():
		return AuthenticatedAdmin
	default:
		return AuthenticatedUser
	}
}

func (s AuthStatus) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case AuthenticatedUser:
		return "user"
	case AuthenticatedAdmin:
		return "admin"
	default:
		return fmt.Sprintf("AuthStatus(%d)", int(s))
	}
}

func (s AuthStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *AuthStatus) UnmarshalText(text []byte) error {
	for _, candidate := range []AuthStatus{Anonymous, AuthenticatedUser, AuthenticatedAdmin} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown auth status %q", text)
}
