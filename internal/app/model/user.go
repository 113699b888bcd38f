package model

import (
	"time"
)

// UserRole is the closed set of account roles. Role is assigned at
// registration and never changes afterwards.
type UserRole string

const (
	RoleUser       UserRole = "user"        // regular rater
	RoleStoreOwner UserRole = "store_owner" // may create and manage own stores
	RoleAdmin      UserRole = "admin"       // full access
)

// Valid reports whether the role is one of the known constants
func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleStoreOwner, RoleAdmin:
		return true
	}
	return false
}

// EntityStatus is the lifecycle state shared by users and stores.
// The only public transition is active -> inactive (soft delete);
// admins may move a record in either direction.
type EntityStatus string

const (
	StatusActive   EntityStatus = "active"
	StatusInactive EntityStatus = "inactive"
)

func (s EntityStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

type User struct {
	ID           uint         `gorm:"primarykey" json:"id"`
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	FirstName    string       `gorm:"not null" json:"first_name"`
	LastName     string       `gorm:"not null" json:"last_name"`
	Phone        string       `json:"phone"`
	Role         UserRole     `gorm:"type:varchar(20);default:'user'" json:"role"`
	Status       EntityStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Stores  []Store  `gorm:"foreignKey:OwnerID" json:"stores,omitempty"`
	Ratings []Rating `gorm:"foreignKey:UserID" json:"ratings,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsActive reports whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// DisplayName is the name shown next to a non-anonymous rating
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
