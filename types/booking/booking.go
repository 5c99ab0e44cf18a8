package booking

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// GuestInput is an individual traveller on a booking create request.
type GuestInput struct {
	GuestType      string `json:"guest_type" validate:"omitempty,oneof=adult child infant"`
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	DateOfBirth    string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Nationality    string `json:"nationality" validate:"omitempty,max=100"`
	PassportNumber string `json:"passport_number" validate:"omitempty,max=50"`
}

// BookingCreateRequest represents the request payload for creating a booking
type BookingCreateRequest struct {
	TourID           uint   `json:"tour_id" validate:"required"`
	DepartureDate    string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	ReturnDate       string `json:"return_date" validate:"required,datetime=2006-01-02"`
	NumberOfAdults   int    `json:"number_of_adults" validate:"required,min=1,max=50"`
	NumberOfChildren int    `json:"number_of_children" validate:"min=0,max=50"`

	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"required,min=7,max=17"`
	Address   string `json:"address" validate:"omitempty"`
	City      string `json:"city" validate:"omitempty,max=100"`
	Country   string `json:"country" validate:"omitempty,max=100"`

	SpecialRequests string       `json:"special_requests" validate:"omitempty"`
	Guests          []GuestInput `json:"guests" validate:"omitempty,dive"`
}

func (r BookingCreateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	dep, _ := time.Parse("2006-01-02", r.DepartureDate)
	ret, _ := time.Parse("2006-01-02", r.ReturnDate)
	if ret.Before(dep) {
		return fmt.Errorf("return_date must not be before departure_date")
	}
	return nil
}

// BookingCheckRequest looks up a booking by reference and the email it was
// booked under.
type BookingCheckRequest struct {
	BookingReference string `json:"booking_reference" validate:"required,min=8,max=20"`
	Email            string `json:"email" validate:"required,email"`
}

func (r BookingCheckRequest) Validate() error {
	return validate.Struct(r)
}

// PaymentCreateRequest records a payment against a booking.
type PaymentCreateRequest struct {
	BookingID       uint    `json:"booking_id" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod   string  `json:"payment_method" validate:"required,oneof=cash card bank_transfer mobile_money paypal other"`
	ReferenceNumber string  `json:"reference_number" validate:"omitempty,max=100"`
	TransactionID   string  `json:"transaction_id" validate:"omitempty,max=100"`
	Notes           string  `json:"notes" validate:"omitempty"`
}

func (r PaymentCreateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}

// PaymentStatusUpdateRequest changes the status of an existing payment.
type PaymentStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed failed cancelled refunded"`
}

func (r PaymentStatusUpdateRequest) Validate() error {
	return validate.Struct(r)
}

// BulkStatusUpdateRequest moves a set of bookings to a single status.
type BulkStatusUpdateRequest struct {
	BookingIDs []uint `json:"booking_ids" validate:"required,min=1,dive,required"`
	Status     string `json:"status" validate:"required,oneof=pending confirmed paid completed cancelled refunded"`
}

func (r BulkStatusUpdateRequest) Validate() error {
	return validate.Struct(r)
}

// ConfirmRequest carries the departure details fixed when staff confirm a
// booking. Every field is optional; omitted fields keep their stored values.
type ConfirmRequest struct {
	ConfirmedDate string `json:"confirmed_date" validate:"omitempty,datetime=2006-01-02"`
	ConfirmedTime string `json:"confirmed_time" validate:"omitempty,datetime=15:04"`
	MeetingPoint  string `json:"meeting_point" validate:"omitempty,max=300"`
	Notes         string `json:"notes" validate:"omitempty,max=1000"`
}

func (r ConfirmRequest) Validate() error {
	return validate.Struct(r)
}

// DiscountRequest sets the discount on a booking.
type DiscountRequest struct {
	DiscountAmount float64 `json:"discount_amount" validate:"min=0"`
}

func (r DiscountRequest) Validate() error {
	return validate.Struct(r)
}

// CancelRequest carries the optional reason for a cancellation.
type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// InquiryCreateRequest represents a contact form or tour inquiry submission.
type InquiryCreateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=17"`
	InquiryType string `json:"inquiry_type" validate:"omitempty,oneof=general booking custom_tour support complaint feedback"`
	Subject     string `json:"subject" validate:"required,max=300"`
	Message     string `json:"message" validate:"required"`
	TourID      *uint  `json:"tour_id" validate:"omitempty"`

	PreferredTravelDates string `json:"preferred_travel_dates" validate:"omitempty,datetime=2006-01-02"`
	NumberOfTravelers    *int   `json:"number_of_travelers" validate:"omitempty,min=1"`
	BudgetRange          string `json:"budget_range" validate:"omitempty,max=100"`
}

func (r InquiryCreateRequest) Validate() error {
	return validate.Struct(r)
}

// NewsletterSubscribeRequest subscribes an email to the newsletter.
type NewsletterSubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"omitempty,max=200"`
}

func (r NewsletterSubscribeRequest) Validate() error {
	return validate.Struct(r)
}

// NewsletterUnsubscribeRequest deactivates a newsletter subscription.
type NewsletterUnsubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (r NewsletterUnsubscribeRequest) Validate() error {
	return validate.Struct(r)
}
