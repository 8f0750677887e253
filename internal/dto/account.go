package dto

import (
	"time"

	"github.com/yukikurage/taskflow/internal/models"
)

// AccountDTO represents an account in API responses. The password hash
// never leaves the server.
type AccountDTO struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Location  string    `json:"location"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionDTO is the body of a successful login
type SessionDTO struct {
	User      AccountDTO `json:"user"`
	Remember  bool       `json:"remember"`
	StartedAt time.Time  `json:"started_at"`
}

// ToAccountDTO converts an Account model to AccountDTO
func ToAccountDTO(account models.Account) AccountDTO {
	return AccountDTO{
		Name:      account.Name,
		Email:     account.Email,
		Location:  account.Location,
		Username:  account.Username,
		CreatedAt: account.CreatedAt,
	}
}
