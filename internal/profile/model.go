package profile

import "time"

// UserProfile is one synthesized profile snapshot. Rows are append-only: a
// regenerated profile supersedes by CreatedAt, never by mutation.
type UserProfile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}
