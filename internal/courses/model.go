package courses

import (
	"time"

	"github.com/mjaffal21/devcamper-api/internal/bootcamps"
)

// Skill levels a course may require.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Course belongs to a bootcamp and is owned by the bootcamp's publisher.
type Course struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Title                string    `gorm:"size:150;not null" json:"title"`
	Description          string    `gorm:"not null" json:"description"`
	Weeks                int       `gorm:"not null" json:"weeks"`
	Tuition              float64   `gorm:"not null" json:"tuition"`
	MinimumSkill         string    `gorm:"size:20;not null" json:"minimum_skill"`
	ScholarshipAvailable bool      `gorm:"default:false" json:"scholarship_available"`
	BootcampID           uint      `gorm:"index;not null" json:"bootcamp_id"`
	UserID               uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	Bootcamp *bootcamps.Bootcamp `gorm:"constraint:OnDelete:CASCADE" json:"bootcamp,omitempty"`
}
