package reviews

import (
	"time"

	"github.com/mjaffal21/devcamper-api/internal/bootcamps"
)

// Review is one user's rating of a bootcamp. A user may review a bootcamp at
// most once, enforced by the composite unique index.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:100;not null" json:"title"`
	Text       string    `gorm:"not null" json:"text"`
	Rating     int       `gorm:"not null" json:"rating"`
	BootcampID uint      `gorm:"not null;uniqueIndex:idx_review_bootcamp_user" json:"bootcamp_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_review_bootcamp_user" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Bootcamp *bootcamps.Bootcamp `gorm:"constraint:OnDelete:CASCADE" json:"bootcamp,omitempty"`
}
