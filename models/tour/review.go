package tour

import "time"

// Review is a customer review of a tour. One review per email per tour;
// reviews are held until a staff member approves them, and only approved
// reviews feed the tour's denormalized rating and total_reviews.
type Review struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	TourID uint `gorm:"not null;uniqueIndex:idx_reviews_tour_email" json:"tour_id"`

	Name  string `gorm:"type:varchar(100);not null" json:"name"`
	Email string `gorm:"type:varchar(255);not null;uniqueIndex:idx_reviews_tour_email" json:"email"`

	Rating  int    `gorm:"not null" json:"rating"`
	Title   string `gorm:"type:varchar(200);not null" json:"title"`
	Comment string `gorm:"type:text;not null" json:"comment"`

	IsApproved bool      `gorm:"default:false;index" json:"is_approved"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
