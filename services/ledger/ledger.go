package ledger

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"richman-tours/logger"
	bookingModel "richman-tours/models/booking"
	tourModel "richman-tours/models/tour"
	"richman-tours/services/notifier"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	ErrTourNotFound          = errors.New("tour not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentExceedsBalance = errors.New("payment amount exceeds balance due")
	ErrInvalidDiscount       = errors.New("discount must be between zero and the subtotal")
	ErrBookingClosed         = errors.New("booking is in a terminal state")
	ErrInvalidStatus         = errors.New("invalid status")
)

// moneyEpsilon absorbs float rounding when comparing currency amounts.
const moneyEpsilon = 0.01

const maxReferenceAttempts = 5

// Config holds the tunables of the booking ledger.
type Config struct {
	// ChildPriceRatio is applied to the adult price when a tour has no
	// explicit child price.
	ChildPriceRatio float64
	// ReferencePrefix is the two-letter prefix of booking references.
	ReferencePrefix string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ChildPriceRatio: 0.7,
		ReferencePrefix: "RT",
	}
}

// ConfigFromEnv reads CHILD_PRICE_RATIO and BOOKING_REFERENCE_PREFIX,
// falling back to the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("CHILD_PRICE_RATIO"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil && ratio > 0 && ratio <= 1 {
			cfg.ChildPriceRatio = ratio
		}
	}
	if v := os.Getenv("BOOKING_REFERENCE_PREFIX"); len(v) == 2 {
		cfg.ReferencePrefix = strings.ToUpper(v)
	}
	return cfg
}

// Service owns the booking ledger: creation, derived pricing fields and
// payment reconciliation. All money fields on a booking are recomputed here,
// never written directly by callers.
type Service struct {
	db       *gorm.DB
	cfg      Config
	notifier notifier.Notifier

	// newReference generates candidate booking references; tests swap it to
	// force collisions.
	newReference func(prefix string) (string, error)
}

func NewService(db *gorm.DB, cfg Config, n notifier.Notifier) *Service {
	if cfg.ChildPriceRatio <= 0 {
		cfg.ChildPriceRatio = 0.7
	}
	if cfg.ReferencePrefix == "" {
		cfg.ReferencePrefix = "RT"
	}
	if n == nil {
		n = notifier.Noop{}
	}
	return &Service{db: db, cfg: cfg, notifier: n, newReference: NewReference}
}

// GuestParams describes one traveller on a new booking.
type GuestParams struct {
	GuestType      string
	FirstName      string
	LastName       string
	DateOfBirth    *time.Time
	Nationality    string
	PassportNumber string
}

// CreateBookingParams is the parsed input for CreateBooking.
type CreateBookingParams struct {
	TourID           uint
	DepartureDate    time.Time
	ReturnDate       time.Time
	NumberOfAdults   int
	NumberOfChildren int

	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	Country   string

	SpecialRequests string
	Guests          []GuestParams
}

// ChildPriceFor returns the per-child price for a tour: the explicit child
// price when set, otherwise the adult price scaled by the configured ratio.
func (s *Service) ChildPriceFor(t *tourModel.Tour) float64 {
	if t.ChildPrice != nil {
		return *t.ChildPrice
	}
	return t.Price * s.cfg.ChildPriceRatio
}

// ComputeTotals recomputes every derived money field on the booking from its
// guest counts, unit prices, discount and amount paid.
func ComputeTotals(b *bookingModel.Booking) {
	b.TotalGuests = b.NumberOfAdults + b.NumberOfChildren
	b.Subtotal = float64(b.NumberOfAdults)*b.AdultPrice + float64(b.NumberOfChildren)*b.ChildPrice
	b.TotalAmount = b.Subtotal - b.DiscountAmount
	b.BalanceDue = b.TotalAmount - b.AmountPaid
}

// CreateBooking creates a booking against an active tour. The customer row is
// upserted by email, with the submitted details overwriting whatever was
// stored before. The new booking starts pending with no payments.
func (s *Service) CreateBooking(params CreateBookingParams) (*bookingModel.Booking, error) {
	var t tourModel.Tour
	if err := s.db.Where("id = ? AND is_active = ?", params.TourID, true).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("load tour: %w", err)
	}

	country := params.Country
	if country == "" {
		country = "Kenya"
	}

	var created bookingModel.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		customer, err := upsertCustomer(tx, params, country)
		if err != nil {
			return err
		}

		guests := make([]bookingModel.Guest, 0, len(params.Guests))
		for _, g := range params.Guests {
			guestType := g.GuestType
			if guestType == "" {
				guestType = bookingModel.GuestTypeAdult
			}
			guests = append(guests, bookingModel.Guest{
				GuestType:      guestType,
				FirstName:      g.FirstName,
				LastName:       g.LastName,
				DateOfBirth:    g.DateOfBirth,
				Nationality:    g.Nationality,
				PassportNumber: g.PassportNumber,
			})
		}

		b := bookingModel.Booking{
			BookingID:        uuid.NewString(),
			TourID:           t.ID,
			CustomerID:       customer.ID,
			DepartureDate:    params.DepartureDate,
			ReturnDate:       params.ReturnDate,
			NumberOfAdults:   params.NumberOfAdults,
			NumberOfChildren: params.NumberOfChildren,
			AdultPrice:       t.Price,
			ChildPrice:       s.ChildPriceFor(&t),
			Status:           bookingModel.BookingStatusPending,
			PaymentStatus:    bookingModel.PaymentStatePending,
			SpecialRequests:  params.SpecialRequests,
			Guests:           guests,
		}
		ComputeTotals(&b)

		// References are random; check for the rare collision before the
		// insert, since a failed insert would abort the whole transaction
		// on postgres. The unique constraint stays as the backstop.
		ref, err := s.freeReference(tx)
		if err != nil {
			return err
		}
		b.BookingReference = ref

		if err := tx.Create(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("booking reference collision on %s: %w", ref, err)
			}
			return fmt.Errorf("create booking: %w", err)
		}
		created = b
		created.Tour = t
		created.Customer = *customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BookingCreated(&created)
	return &created, nil
}

// freeReference generates references until one is unused.
func (s *Service) freeReference(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref, err := s.newReference(s.cfg.ReferencePrefix)
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&bookingModel.Booking{}).Where("booking_reference = ?", ref).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check reference: %w", err)
		}
		if count == 0 {
			return ref, nil
		}
		logger.Warning("Booking reference collision, regenerating: " + ref)
	}
	return "", fmt.Errorf("could not allocate a unique booking reference after %d attempts", maxReferenceAttempts)
}

// upsertCustomer finds the customer by email and overwrites the stored
// contact details with the submitted ones, creating the row if missing.
func upsertCustomer(tx *gorm.DB, params CreateBookingParams, country string) (*bookingModel.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	var customer bookingModel.Customer
	err := tx.Where("email = ?", email).First(&customer).Error
	switch {
	case err == nil:
		customer.FirstName = params.FirstName
		customer.LastName = params.LastName
		customer.Phone = params.Phone
		if params.Address != "" {
			customer.Address = params.Address
		}
		if params.City != "" {
			customer.City = params.City
		}
		customer.Country = country
		if err := tx.Save(&customer).Error; err != nil {
			return nil, fmt.Errorf("update customer: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = bookingModel.Customer{
			FirstName: params.FirstName,
			LastName:  params.LastName,
			Email:     email,
			Phone:     params.Phone,
			Address:   params.Address,
			City:      params.City,
			Country:   country,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return nil, fmt.Errorf("create customer: %w", err)
		}
	default:
		return nil, fmt.Errorf("load customer: %w", err)
	}
	return &customer, nil
}

// GetByReference returns a booking with its tour, customer, guests and
// payments preloaded.
func (s *Service) GetByReference(reference string) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := s.db.
		Preload("Tour").Preload("Tour.Category").
		Preload("Customer").Preload("Guests").Preload("Payments").
		Where("booking_reference = ?", strings.ToUpper(strings.TrimSpace(reference))).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// CheckBooking is the public lookup: it requires both the reference and the
// email the booking was made under, so a reference alone leaks nothing.
func (s *Service) CheckBooking(reference, email string) (*bookingModel.Booking, error) {
	b, err := s.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(b.Customer.Email, strings.TrimSpace(email)) {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// BookingsForCustomer returns all bookings made under an email, newest first.
func (s *Service) BookingsForCustomer(email string) ([]bookingModel.Booking, error) {
	var customer bookingModel.Customer
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []bookingModel.Booking{}, nil
		}
		return nil, err
	}

	var bookings []bookingModel.Booking
	err = s.db.Preload("Tour").Preload("Payments").
		Where("customer_id = ?", customer.ID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// lockForUpdate adds a row lock on dialects that support it, so concurrent
// payment writes against the same booking serialize instead of racing the
// balance check.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// PaymentParams is the parsed input for RecordPayment.
type PaymentParams struct {
	BookingID       uint
	Amount          float64
	PaymentMethod   string
	ReferenceNumber string
	TransactionID   string
	Notes           string
}

// RecordPayment records a completed payment against a booking and reconciles
// the booking's aggregates in the same transaction. A payment larger than the
// outstanding balance is rejected and nothing is written.
func (s *Service) RecordPayment(params PaymentParams) (*bookingModel.Payment, *bookingModel.Booking, error) {
	if !bookingModel.ValidPaymentMethod(params.PaymentMethod) {
		return nil, nil, fmt.Errorf("%w: payment method %q", ErrInvalidStatus, params.PaymentMethod)
	}

	var (
		payment bookingModel.Payment
		b       bookingModel.Booking
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Customer and tour ride along for the confirmation email.
		if err := lockForUpdate(tx).Preload("Customer").Preload("Tour").
			Where("id = ?", params.BookingID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if b.Status.IsTerminal() {
			return ErrBookingClosed
		}
		if params.Amount > b.BalanceDue+moneyEpsilon {
			return ErrPaymentExceedsBalance
		}

		processedAt := time.Now()
		payment = bookingModel.Payment{
			BookingID:       b.ID,
			Amount:          params.Amount,
			PaymentMethod:   params.PaymentMethod,
			ReferenceNumber: params.ReferenceNumber,
			TransactionID:   params.TransactionID,
			Status:          bookingModel.PaymentStatusCompleted,
			ProcessedAt:     &processedAt,
			Notes:           params.Notes,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		return s.reconcile(tx, &b)
	})
	if err != nil {
		return nil, nil, err
	}

	if b.IsPaid() && b.Status == bookingModel.BookingStatusConfirmed {
		s.notifier.BookingConfirmed(&b)
	}
	return &payment, &b, nil
}

// DeletePayment removes a payment and reconciles the booking, so the
// aggregates always reflect the rows that remain.
func (s *Service) DeletePayment(paymentID uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var payment bookingModel.Payment
		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if err := lockForUpdate(tx).Where("id = ?", payment.BookingID).First(&b).Error; err != nil {
			return err
		}
		if err := tx.Delete(&payment).Error; err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		return s.reconcile(tx, &b)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdatePaymentStatus changes a payment row's status and reconciles the
// booking; moving a payment out of completed pulls its amount back out of the
// aggregates.
func (s *Service) UpdatePaymentStatus(paymentID uint, status bookingModel.PaymentStatus) (*bookingModel.Payment, *bookingModel.Booking, error) {
	if !status.IsValid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var (
		payment bookingModel.Payment
		b       bookingModel.Booking
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if err := lockForUpdate(tx).Where("id = ?", payment.BookingID).First(&b).Error; err != nil {
			return err
		}

		payment.Status = status
		if status == bookingModel.PaymentStatusCompleted && payment.ProcessedAt == nil {
			processedAt := time.Now()
			payment.ProcessedAt = &processedAt
		}
		if err := tx.Save(&payment).Error; err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		return s.reconcile(tx, &b)
	})
	if err != nil {
		return nil, nil, err
	}
	return &payment, &b, nil
}

// reconcile recomputes the booking's payment aggregates from the completed
// payments on file and promotes a fully paid pending booking to confirmed.
// It must run inside the transaction that changed the payments.
func (s *Service) reconcile(tx *gorm.DB, b *bookingModel.Booking) error {
	var paid float64
	err := tx.Model(&bookingModel.Payment{}).
		Where("booking_id = ? AND status = ?", b.ID, bookingModel.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error
	if err != nil {
		return fmt.Errorf("sum payments: %w", err)
	}

	b.AmountPaid = paid
	ComputeTotals(b)

	switch {
	// A zero total (fully discounted booking) counts as paid outright.
	case b.AmountPaid >= b.TotalAmount-moneyEpsilon:
		b.PaymentStatus = bookingModel.PaymentStatePaid
	case b.AmountPaid > 0:
		b.PaymentStatus = bookingModel.PaymentStatePartial
	default:
		b.PaymentStatus = bookingModel.PaymentStatePending
	}

	if b.PaymentStatus == bookingModel.PaymentStatePaid && b.Status == bookingModel.BookingStatusPending {
		nowT := time.Now()
		b.Status = bookingModel.BookingStatusConfirmed
		b.ConfirmedAt = &nowT
		b.ConfirmedDate = &nowT
	}

	if err := tx.Omit(clause.Associations).Save(b).Error; err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

// ConfirmParams carries the departure details staff fix when confirming a
// booking. Zero-value fields leave the stored values alone.
type ConfirmParams struct {
	ConfirmedDate *time.Time
	ConfirmedTime string
	MeetingPoint  string
	Notes         string
}

// ConfirmBooking manually confirms a booking from any non-terminal status and
// records the confirmed departure details. The confirmation email only goes
// out when the status actually changed, so re-saving details on an already
// confirmed booking stays quiet.
func (s *Service) ConfirmBooking(bookingID uint, params ConfirmParams) (*bookingModel.Booking, error) {
	var (
		b        bookingModel.Booking
		promoted bool
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Customer").Preload("Tour").
			Where("id = ?", bookingID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if b.Status.IsTerminal() {
			return ErrBookingClosed
		}

		nowT := time.Now()
		promoted = b.Status != bookingModel.BookingStatusConfirmed
		b.Status = bookingModel.BookingStatusConfirmed
		if b.ConfirmedAt == nil {
			b.ConfirmedAt = &nowT
		}

		switch {
		case params.ConfirmedDate != nil:
			b.ConfirmedDate = params.ConfirmedDate
		case b.ConfirmedDate == nil:
			b.ConfirmedDate = &b.DepartureDate
		}
		if params.ConfirmedTime != "" {
			b.ConfirmedTime = params.ConfirmedTime
		}
		if params.MeetingPoint != "" {
			b.MeetingPoint = params.MeetingPoint
		}
		if params.Notes != "" {
			if b.Notes != "" {
				b.Notes += "\n"
			}
			b.Notes += params.Notes
		}
		return tx.Omit(clause.Associations).Save(&b).Error
	})
	if err != nil {
		return nil, err
	}
	if promoted {
		s.notifier.BookingConfirmed(&b)
	}
	return &b, nil
}

// ApplyDiscount sets the booking's discount and reconciles the derived money
// fields. A discount covering the whole subtotal marks the booking paid and
// promotes it like any other full settlement.
func (s *Service) ApplyDiscount(bookingID uint, amount float64) (*bookingModel.Booking, error) {
	var (
		b          bookingModel.Booking
		prevStatus bookingModel.BookingStatus
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Customer").Preload("Tour").
			Where("id = ?", bookingID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if b.Status.IsTerminal() {
			return ErrBookingClosed
		}
		if amount < 0 || amount > b.Subtotal+moneyEpsilon {
			return ErrInvalidDiscount
		}
		prevStatus = b.Status
		b.DiscountAmount = amount
		return s.reconcile(tx, &b)
	})
	if err != nil {
		return nil, err
	}
	if b.Status == bookingModel.BookingStatusConfirmed && prevStatus != bookingModel.BookingStatusConfirmed {
		s.notifier.BookingConfirmed(&b)
	}
	return &b, nil
}

// CancelBooking cancels a booking that has not completed; the reason, when
// given, is appended to the booking notes.
func (s *Service) CancelBooking(bookingID uint, reason string) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Where("id = ?", bookingID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if b.Status == bookingModel.BookingStatusCompleted || b.Status == bookingModel.BookingStatusCancelled {
			return ErrBookingClosed
		}
		nowT := time.Now()
		b.Status = bookingModel.BookingStatusCancelled
		b.CancelledAt = &nowT
		if reason != "" {
			if b.Notes != "" {
				b.Notes += "\n"
			}
			b.Notes += "Cancelled: " + reason
		}
		return tx.Save(&b).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BulkUpdateStatus moves a set of bookings to one status, skipping bookings
// already in a terminal state. Returns the number of rows changed.
func (s *Service) BulkUpdateStatus(bookingIDs []uint, status bookingModel.BookingStatus) (int64, error) {
	if !status.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	res := s.db.Model(&bookingModel.Booking{}).
		Where("id IN ? AND status NOT IN ?", bookingIDs, []bookingModel.BookingStatus{
			bookingModel.BookingStatusCompleted,
			bookingModel.BookingStatusCancelled,
			bookingModel.BookingStatusRefunded,
		}).
		Update("status", status)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Stats is the management dashboard summary.
type Stats struct {
	TotalBookings     int64                                `json:"total_bookings"`
	ByStatus          map[bookingModel.BookingStatus]int64 `json:"by_status"`
	TotalRevenue      float64                              `json:"total_revenue"`
	OutstandingAmount float64                              `json:"outstanding_amount"`
	ThisMonthBookings int64                                `json:"this_month_bookings"`
	ThisMonthRevenue  float64                              `json:"this_month_revenue"`
}

// BookingStats aggregates counts and revenue for the dashboard. Revenue only
// counts fully paid bookings; the this-month window is the calendar month.
func (s *Service) BookingStats() (*Stats, error) {
	stats := &Stats{ByStatus: make(map[bookingModel.BookingStatus]int64)}

	if err := s.db.Model(&bookingModel.Booking{}).Count(&stats.TotalBookings).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status bookingModel.BookingStatus
		Count  int64
	}
	var counts []statusCount
	err := s.db.Model(&bookingModel.Booking{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.ByStatus[c.Status] = c.Count
	}

	err = s.db.Model(&bookingModel.Booking{}).
		Where("payment_status = ?", bookingModel.PaymentStatePaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&bookingModel.Booking{}).
		Where("status NOT IN ?", []bookingModel.BookingStatus{
			bookingModel.BookingStatusCancelled,
			bookingModel.BookingStatusRefunded,
		}).
		Select("COALESCE(SUM(balance_due), 0)").
		Scan(&stats.OutstandingAmount).Error
	if err != nil {
		return nil, err
	}

	monthStart := now.BeginningOfMonth()
	err = s.db.Model(&bookingModel.Booking{}).
		Where("created_at >= ?", monthStart).
		Count(&stats.ThisMonthBookings).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&bookingModel.Booking{}).
		Where("created_at >= ? AND payment_status = ?", monthStart, bookingModel.PaymentStatePaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.ThisMonthRevenue).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
