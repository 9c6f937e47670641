package bootcamps

import "time"

// Bootcamp is a published bootcamp listing. AverageCost and AverageRating are
// aggregates maintained by the courses and reviews packages.
type Bootcamp struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;unique;not null" json:"name"`
	Slug          string    `gorm:"size:120;index" json:"slug"`
	Description   string    `gorm:"size:1000;not null" json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `gorm:"size:20" json:"phone,omitempty"`
	Email         string    `gorm:"size:100" json:"email,omitempty"`
	Address       string    `json:"address"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	Careers       []string  `gorm:"serializer:json" json:"careers"`
	Photo         string    `json:"photo,omitempty"`
	Housing       bool      `gorm:"default:false" json:"housing"`
	JobAssistance bool      `gorm:"default:false" json:"job_assistance"`
	JobGuarantee  bool      `gorm:"default:false" json:"job_guarantee"`
	AcceptGi      bool      `gorm:"default:false" json:"accept_gi"`
	AverageRating float64   `gorm:"type:decimal(4,2);default:0.0" json:"average_rating"`
	AverageCost   float64   `gorm:"default:0.0" json:"average_cost"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
