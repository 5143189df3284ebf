package user

import "postpilot/internal/core/user"

// UserRepository is the persistence port for accounts.
type UserRepository interface {
	Create(user *user.User) (*user.User, error)
	FindByUsernameOrEmail(username, email string) (*user.User, error)
	FindByUsername(username string) (*user.User, error)
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
