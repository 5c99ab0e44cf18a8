package tour

import (
	"strings"
	"time"
)

// Category groups tours (Safari, Beach, Mountain, Cultural, ...).
type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;unique" json:"name"`
	Slug        string    `gorm:"type:varchar(100);not null;unique" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"type:varchar(50)" json:"icon"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Destination is a place a tour visits.
type Destination struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"type:varchar(200);not null" json:"name"`
	Slug        string     `gorm:"type:varchar(200);not null;unique" json:"slug"`
	County      string     `gorm:"type:varchar(100);not null" json:"county"`
	Region      string     `gorm:"type:varchar(100);not null" json:"region"`
	Description string     `gorm:"type:text" json:"description"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	ImageURL    string     `gorm:"type:varchar(2048)" json:"image_url"`
	IsFeatured  bool       `gorm:"default:false" json:"is_featured"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Tour is a bookable tour package.
type Tour struct {
	ID           uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string        `gorm:"type:varchar(300);not null" json:"title"`
	Slug         string        `gorm:"type:varchar(300);not null;unique" json:"slug"`
	CategoryID   uint          `gorm:"not null;index" json:"category_id"`
	Category     Category      `gorm:"foreignKey:CategoryID" json:"category"`
	Destinations []Destination `gorm:"many2many:tour_destinations" json:"destinations"`

	Description string `gorm:"type:text;not null" json:"description"`
	Highlights  string `gorm:"type:text" json:"highlights"`
	Includes    string `gorm:"type:text" json:"includes"`
	Excludes    string `gorm:"type:text" json:"excludes"`

	// Price is the per-adult price. ChildPrice, when set, overrides the
	// ratio-based default the booking service computes.
	Price          float64  `gorm:"not null" json:"price"`
	ChildPrice     *float64 `json:"child_price,omitempty"`
	DurationDays   int      `gorm:"not null" json:"duration_days"`
	DurationNights int      `gorm:"not null" json:"duration_nights"`
	MaxGroupSize   int      `gorm:"default:8" json:"max_group_size"`
	MinAge         int      `gorm:"default:0" json:"min_age"`
	Difficulty     string   `gorm:"type:varchar(20);default:easy" json:"difficulty"`

	FeaturedImageURL string `gorm:"type:varchar(2048)" json:"featured_image_url"`

	IsActive     bool    `gorm:"default:true" json:"is_active"`
	IsFeatured   bool    `gorm:"default:false" json:"is_featured"`
	ViewsCount   uint    `gorm:"default:0" json:"views_count"`
	Rating       float64 `gorm:"default:0" json:"rating"`
	TotalReviews uint    `gorm:"default:0" json:"total_reviews"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Difficulty levels for tours.
const (
	DifficultyEasy        = "easy"
	DifficultyModerate    = "moderate"
	DifficultyChallenging = "challenging"
	DifficultyExpert      = "expert"
)

// Slugify converts a title into a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
