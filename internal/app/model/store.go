package model

import (
	"time"
)

type Store struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`
	Owner       User   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Address     string `gorm:"type:text;not null" json:"address"`
	City        string `gorm:"index;not null" json:"city"`
	State       string `gorm:"not null" json:"state"`
	ZipCode     string `gorm:"type:varchar(10)" json:"zip_code"`
	Phone       string `gorm:"type:varchar(15)" json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	LogoURL     string `json:"logo_url"`
	Category    string `gorm:"index;not null" json:"category"`

	Status EntityStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	// Derived from the rating ledger; rewritten in the same transaction
	// as every rating mutation. Never written from client input.
	AverageRating float64 `gorm:"type:decimal(2,1);default:0.0" json:"average_rating"`
	TotalRatings  int     `gorm:"default:0" json:"total_ratings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Ratings []Rating `gorm:"foreignKey:StoreID" json:"ratings,omitempty"`
}

func (Store) TableName() string {
	return "stores"
}

// IsActive reports whether the store is visible in the public catalog
func (s *Store) IsActive() bool {
	return s.Status == StatusActive
}
