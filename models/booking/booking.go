package booking

import (
	"time"

	tourModel "richman-tours/models/tour"
)

// Customer holds the contact details a booking is made under. Customers are
// keyed by email: re-booking with the same email overwrites the stored
// details with whatever was submitted last.
type Customer struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     string `gorm:"type:varchar(255);not null;unique" json:"email"`
	Phone     string `gorm:"type:varchar(17);not null" json:"phone"`

	Address string `gorm:"type:text" json:"address"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	Country string `gorm:"type:varchar(100);default:Kenya" json:"country"`

	DateOfBirth         *time.Time `json:"date_of_birth,omitempty"`
	Nationality         string     `gorm:"type:varchar(100)" json:"nationality"`
	PassportNumber      string     `gorm:"type:varchar(50)" json:"passport_number"`
	DietaryRequirements string     `gorm:"type:text" json:"dietary_requirements"`
	MedicalConditions   string     `gorm:"type:text" json:"medical_conditions"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Booking is the main booking record. The money fields below the pricing
// comment are derived: they are recomputed from adults/children/prices and
// the completed payments on every write, never trusted as stored.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// BookingID is the stable internal identifier; BookingReference is the
	// human-facing code (2 letters + 6 uppercase alphanumerics). Both are
	// assigned once at creation.
	BookingID        string `gorm:"type:varchar(36);not null;unique" json:"booking_id"`
	BookingReference string `gorm:"type:varchar(20);not null;unique" json:"booking_reference"`

	TourID     uint           `gorm:"not null;index" json:"tour_id"`
	Tour       tourModel.Tour `gorm:"foreignKey:TourID" json:"tour"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	Customer   Customer       `gorm:"foreignKey:CustomerID" json:"customer"`

	DepartureDate    time.Time `gorm:"not null" json:"departure_date"`
	ReturnDate       time.Time `gorm:"not null" json:"return_date"`
	NumberOfAdults   int       `gorm:"not null;default:1" json:"number_of_adults"`
	NumberOfChildren int       `gorm:"not null;default:0" json:"number_of_children"`
	TotalGuests      int       `gorm:"not null;default:1" json:"total_guests"`

	// Pricing
	AdultPrice     float64 `gorm:"not null" json:"adult_price"`
	ChildPrice     float64 `gorm:"not null;default:0" json:"child_price"`
	Subtotal       float64 `gorm:"not null;default:0" json:"subtotal"`
	DiscountAmount float64 `gorm:"not null;default:0" json:"discount_amount"`
	TotalAmount    float64 `gorm:"not null;default:0" json:"total_amount"`
	AmountPaid     float64 `gorm:"not null;default:0" json:"amount_paid"`
	BalanceDue     float64 `gorm:"not null;default:0" json:"balance_due"`

	Status        BookingStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	PaymentStatus PaymentState  `gorm:"type:varchar(20);not null;default:pending" json:"payment_status"`

	SpecialRequests string `gorm:"type:text" json:"special_requests"`
	Notes           string `gorm:"type:text" json:"notes"`

	// ConfirmedDate/ConfirmedTime are the tour departure details the staff
	// fix at confirmation; ConfirmedAt below is when the confirmation happened.
	ConfirmedDate *time.Time `json:"confirmed_date,omitempty"`
	ConfirmedTime string     `gorm:"type:varchar(5)" json:"confirmed_time,omitempty"`
	MeetingPoint  string     `gorm:"type:varchar(300)" json:"meeting_point"`

	Guests   []Guest   `gorm:"foreignKey:BookingID" json:"guests"`
	Payments []Payment `gorm:"foreignKey:BookingID" json:"payments"`

	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// IsPaid reports whether the booking is fully paid.
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatePaid
}

// DaysUntilDeparture returns the number of whole days until departure.
func (b *Booking) DaysUntilDeparture() int {
	return int(time.Until(b.DepartureDate).Hours() / 24)
}

// Guest is an individual traveller attached to a booking.
type Guest struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID uint   `gorm:"not null;index" json:"booking_id"`
	GuestType string `gorm:"type:varchar(10);not null;default:adult" json:"guest_type"`

	FirstName      string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName       string     `gorm:"type:varchar(100);not null" json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Nationality    string     `gorm:"type:varchar(100)" json:"nationality"`
	PassportNumber string     `gorm:"type:varchar(50)" json:"passport_number"`

	DietaryRequirements string `gorm:"type:text" json:"dietary_requirements"`
	MedicalConditions   string `gorm:"type:text" json:"medical_conditions"`
	SpecialAssistance   string `gorm:"type:text" json:"special_assistance"`
}

// Guest types.
const (
	GuestTypeAdult  = "adult"
	GuestTypeChild  = "child"
	GuestTypeInfant = "infant"
)
