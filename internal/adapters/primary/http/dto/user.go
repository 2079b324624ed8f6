package dto

import (
	"time"

	"forge-service/internal/core/domain"
)

type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8,max=255"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required"`
	TokenName string   `json:"token_name" binding:"required,max=255"`
	Abilities []string `json:"abilities"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public profile. Email is only set when the viewer is
// the user themselves.
type UserResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Verified       bool   `json:"email_verified"`
	About          string `json:"about"`
	ProfilePhoto   string `json:"profile_photo_path"`
	CoverPhoto     string `json:"cover_photo_path"`
	Role           string `json:"role"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	Banned         bool   `json:"banned"`
	CreatedAt      string `json:"created_at"`
	HubID          *int64 `json:"hub_id,omitempty"`
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Verified:       u.HasVerifiedEmail(),
		About:          u.About,
		ProfilePhoto:   u.ProfilePhoto,
		CoverPhoto:     u.CoverPhoto,
		Role:           string(u.Role),
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		Banned:         u.Banned,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
		HubID:          u.HubID,
	}
}

func ToSelfResponse(u *domain.User) UserResponse {
	resp := ToUserResponse(u)
	resp.Email = u.Email
	return resp
}
