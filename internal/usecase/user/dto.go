package user

import (
	"time"

	"github.com/google/uuid"

	domainUser "shipment-tracker/internal/domain/user"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,user_role"`
}

// UpdateUserRequest is a partial update. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitnil,min=3,max=100"`
	Password *string `json:"password" validate:"omitnil,min=6,max=72"`
	Role     *string `json:"role" validate:"omitnil,user_role"`
}

func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Username == nil && r.Password == nil && r.Role == nil
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func ToUserResponses(users []*domainUser.User) []*UserResponse {
	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}
