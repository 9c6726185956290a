package domain

import "time"

// User is a registered account. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string `json:"-"`
	Avatar    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultAvatar is assigned to accounts created without a photo.
const DefaultAvatar = "https://cdn-icons-png.flaticon.com/512/3135/3135715.png"

// PublicUser is the sanitized view of a User returned across the service boundary.
type PublicUser struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public strips the password hash.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserPatch carries optional profile changes. Nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *string
}
