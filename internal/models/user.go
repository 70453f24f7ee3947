package models

import "time"

// User is the minimal account record the payment core needs: identity plus
// the provider a withdrawal defaults to. Registration and profile
// management live in an external service.
type User struct {
	ID              uint     `gorm:"primarykey" json:"id"`
	Email           string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role            string   `gorm:"size:32;not null;default:'user'" json:"role"`
	DefaultProvider Provider `gorm:"size:16;not null;default:'stripe'" json:"default_provider"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
