package model

import (
	"time"
)

// Rating is one user's rating of one store. The (user, store) pair is
// unique; rows are hard-deleted so a removed rating drops out of the
// store aggregate and the user may rate the store again.
type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID  uint  `gorm:"not null;index:idx_ratings_user_store,unique" json:"user_id"`
	User    User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StoreID uint  `gorm:"not null;index:idx_ratings_user_store,unique" json:"store_id"`
	Store   Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`

	Rating      int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Review      string `gorm:"type:text" json:"review"`
	IsAnonymous bool   `gorm:"default:false" json:"is_anonymous"`
	IsVerified  bool   `gorm:"default:false" json:"is_verified"`
}

func (Rating) TableName() string {
	return "ratings"
}
