package booking

import (
	"time"
)

// Inquiry is a contact-form or booking-inquiry submission.
type Inquiry struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	Name  string `gorm:"type:varchar(200);not null" json:"name"`
	Email string `gorm:"type:varchar(255);not null" json:"email"`
	Phone string `gorm:"type:varchar(17)" json:"phone"`

	InquiryType string `gorm:"type:varchar(20);not null;default:general" json:"inquiry_type"`
	Subject     string `gorm:"type:varchar(300);not null" json:"subject"`
	Message     string `gorm:"type:text;not null" json:"message"`
	TourID      *uint  `gorm:"index" json:"tour_id,omitempty"`

	Status       string `gorm:"type:varchar(20);not null;default:new" json:"status"`
	AssignedToID *uint  `gorm:"index" json:"assigned_to_id,omitempty"`

	PreferredTravelDates *time.Time `json:"preferred_travel_dates,omitempty"`
	NumberOfTravelers    *int       `json:"number_of_travelers,omitempty"`
	BudgetRange          string     `gorm:"type:varchar(100)" json:"budget_range"`
	Source               string     `gorm:"type:varchar(100)" json:"source"`

	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Inquiry types.
const (
	InquiryTypeGeneral    = "general"
	InquiryTypeBooking    = "booking"
	InquiryTypeCustomTour = "custom_tour"
	InquiryTypeSupport    = "support"
	InquiryTypeComplaint  = "complaint"
	InquiryTypeFeedback   = "feedback"
)

// Inquiry statuses.
const (
	InquiryStatusNew        = "new"
	InquiryStatusInProgress = "in_progress"
	InquiryStatusResolved   = "resolved"
	InquiryStatusClosed     = "closed"
)

// Newsletter is a newsletter subscription keyed by email. Unsubscribing
// deactivates the row instead of deleting it so re-subscription keeps the
// original history.
type Newsletter struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string     `gorm:"type:varchar(255);not null;unique" json:"email"`
	Name           string     `gorm:"type:varchar(200)" json:"name"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	SubscribedAt   time.Time  `gorm:"autoCreateTime" json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}
