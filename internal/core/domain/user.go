package domain

import "time"

// Role is the staff role of a user. Regular members have an empty role.
type Role string

const (
	RoleMember        Role = ""
	RoleModerator     Role = "moderator"
	RoleAdministrator Role = "administrator"
)

type User struct {
	ID              int64      `json:"id"`
	HubID           *int64     `json:"hub_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Password        string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	About           string     `json:"about"`
	ProfilePhoto    string     `json:"profile_photo_path"`
	CoverPhoto      string     `json:"cover_photo_path"`
	Role            Role       `json:"role"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Computed fields
	FollowerCount  int  `json:"follower_count"`
	FollowingCount int  `json:"following_count"`
	Banned         bool `json:"banned"`
}

// IsModerator reports whether the user can moderate content. Administrators
// are moderators too.
func (u *User) IsModerator() bool {
	return u != nil && (u.Role == RoleModerator || u.Role == RoleAdministrator)
}

func (u *User) IsAdministrator() bool {
	return u != nil && u.Role == RoleAdministrator
}

func (u *User) HasVerifiedEmail() bool {
	return u != nil && u.EmailVerifiedAt != nil
}
