package response

import (
	"studio-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

type LoginResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"access_token"`
}

type MeResponse struct {
	User *queries.AuthorizedUserView `json:"user"`
}
