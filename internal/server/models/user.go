// Package models holds the account records shared by the store, the cache
// and the services.
package models

import "time"

// User is the stored account. PasswordHash is the raw bcrypt output and is
// never encoded outward.
type User struct {
	ID           int64     `db:"id"`
	UserName     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// PublicUser is the projection handed to clients and kept in the cache.
type PublicUser struct {
	ID       int64  `json:"id"`
	UserName string `json:"username"`
	Email    string `json:"email"`
}

// Public strips the secret fields.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, UserName: u.UserName, Email: u.Email}
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	UserName *string
	Email    *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.UserName == nil && p.Email == nil
}
