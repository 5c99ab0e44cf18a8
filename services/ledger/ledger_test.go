package ledger

import (
	"testing"
	"time"

	"richman-tours/models/account"
	bookingModel "richman-tours/models/booking"
	logModel "richman-tours/models/log"
	tourModel "richman-tours/models/tour"
	"richman-tours/services/notifier"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&account.User{}, &account.LoginAttempt{},
		&tourModel.Category{}, &tourModel.Destination{}, &tourModel.Tour{},
		&bookingModel.Customer{}, &bookingModel.Booking{}, &bookingModel.Guest{},
		&bookingModel.Payment{}, &bookingModel.Inquiry{}, &bookingModel.Newsletter{},
		&logModel.Log{},
	)
	require.NoError(t, err)
	return db
}

func seedTour(t *testing.T, db *gorm.DB, price float64) *tourModel.Tour {
	t.Helper()
	cat := tourModel.Category{Name: "Safari " + t.Name(), Slug: tourModel.Slugify("safari " + t.Name())}
	require.NoError(t, db.Create(&cat).Error)

	tr := tourModel.Tour{
		Title:          "Masai Mara Adventure",
		Slug:           tourModel.Slugify("masai mara " + t.Name()),
		CategoryID:     cat.ID,
		Description:    "Three days in the Mara",
		Price:          price,
		DurationDays:   3,
		DurationNights: 2,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&tr).Error)
	return &tr
}

func createParams(tourID uint, adults, children int) CreateBookingParams {
	return CreateBookingParams{
		TourID:           tourID,
		DepartureDate:    time.Now().AddDate(0, 1, 0),
		ReturnDate:       time.Now().AddDate(0, 1, 3),
		NumberOfAdults:   adults,
		NumberOfChildren: children,
		FirstName:        "Amina",
		LastName:         "Odhiambo",
		Email:            "amina@example.com",
		Phone:            "+254700111222",
	}
}

func TestComputeTotals(t *testing.T) {
	b := bookingModel.Booking{
		NumberOfAdults:   2,
		NumberOfChildren: 0,
		AdultPrice:       850,
		ChildPrice:       595,
	}
	ComputeTotals(&b)

	require.Equal(t, 2, b.TotalGuests)
	require.Equal(t, 1700.0, b.Subtotal)
	require.Equal(t, 1700.0, b.TotalAmount)
	require.Equal(t, 1700.0, b.BalanceDue)
}

func TestComputeTotalsWithChildrenAndDiscount(t *testing.T) {
	b := bookingModel.Booking{
		NumberOfAdults:   2,
		NumberOfChildren: 1,
		AdultPrice:       1000,
		ChildPrice:       700,
		DiscountAmount:   200,
		AmountPaid:       500,
	}
	ComputeTotals(&b)

	require.Equal(t, 3, b.TotalGuests)
	require.Equal(t, 2700.0, b.Subtotal)
	require.Equal(t, 2500.0, b.TotalAmount)
	require.Equal(t, 2000.0, b.BalanceDue)
}

func TestChildPriceFallback(t *testing.T) {
	svc := NewService(nil, DefaultConfig(), nil)

	tr := tourModel.Tour{Price: 1000}
	require.Equal(t, 700.0, svc.ChildPriceFor(&tr))

	explicit := 500.0
	tr.ChildPrice = &explicit
	require.Equal(t, 500.0, svc.ChildPriceFor(&tr))
}

func TestCreateBooking(t *testing.T) {
	db := setupTestDB(t)
	rec := &notifier.Recorder{}
	svc := NewService(db, DefaultConfig(), rec)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)

	require.Regexp(t, ReferencePattern, b.BookingReference)
	require.NotEmpty(t, b.BookingID)
	require.Equal(t, bookingModel.BookingStatusPending, b.Status)
	require.Equal(t, bookingModel.PaymentStatePending, b.PaymentStatus)
	require.Equal(t, 1700.0, b.TotalAmount)
	require.Equal(t, 1700.0, b.BalanceDue)
	require.Equal(t, 0.0, b.AmountPaid)
	require.Equal(t, []string{b.BookingReference}, rec.Created)
}

func TestCreateBookingInactiveTour(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)
	require.NoError(t, db.Model(tr).Update("is_active", false).Error)

	_, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.ErrorIs(t, err, ErrTourNotFound)
}

func TestCreateBookingUpsertsCustomerByEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	first := createParams(tr.ID, 1, 0)
	_, err := svc.CreateBooking(first)
	require.NoError(t, err)

	second := createParams(tr.ID, 2, 0)
	second.FirstName = "Grace"
	second.Phone = "+254711222333"
	_, err = svc.CreateBooking(second)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&bookingModel.Customer{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var customer bookingModel.Customer
	require.NoError(t, db.Where("email = ?", "amina@example.com").First(&customer).Error)
	require.Equal(t, "Grace", customer.FirstName)
	require.Equal(t, "+254711222333", customer.Phone)
}

func TestRecordPaymentFullPromotesBooking(t *testing.T) {
	db := setupTestDB(t)
	rec := &notifier.Recorder{}
	svc := NewService(db, DefaultConfig(), rec)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)

	payment, updated, err := svc.RecordPayment(PaymentParams{
		BookingID:     b.ID,
		Amount:        1700,
		PaymentMethod: bookingModel.PaymentMethodCard,
	})
	require.NoError(t, err)

	require.Equal(t, bookingModel.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.ProcessedAt)

	require.Equal(t, 1700.0, updated.AmountPaid)
	require.Equal(t, 0.0, updated.BalanceDue)
	require.Equal(t, bookingModel.PaymentStatePaid, updated.PaymentStatus)
	require.Equal(t, bookingModel.BookingStatusConfirmed, updated.Status)
	require.NotNil(t, updated.ConfirmedAt)
	require.Equal(t, []string{b.BookingReference}, rec.Confirmed)
}

func TestRecordPaymentPartial(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)

	_, updated, err := svc.RecordPayment(PaymentParams{
		BookingID:     b.ID,
		Amount:        500,
		PaymentMethod: bookingModel.PaymentMethodMobileMoney,
	})
	require.NoError(t, err)

	require.Equal(t, 500.0, updated.AmountPaid)
	require.Equal(t, 1200.0, updated.BalanceDue)
	require.Equal(t, bookingModel.PaymentStatePartial, updated.PaymentStatus)
	require.Equal(t, bookingModel.BookingStatusPending, updated.Status)
}

func TestRecordPaymentExceedsBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)

	_, _, err = svc.RecordPayment(PaymentParams{
		BookingID:     b.ID,
		Amount:        2000,
		PaymentMethod: bookingModel.PaymentMethodCash,
	})
	require.ErrorIs(t, err, ErrPaymentExceedsBalance)

	// Nothing was written: no payment row and the aggregates are untouched.
	var payments int64
	require.NoError(t, db.Model(&bookingModel.Payment{}).Where("booking_id = ?", b.ID).Count(&payments).Error)
	require.EqualValues(t, 0, payments)

	var reloaded bookingModel.Booking
	require.NoError(t, db.First(&reloaded, b.ID).Error)
	require.Equal(t, 0.0, reloaded.AmountPaid)
	require.Equal(t, 1700.0, reloaded.BalanceDue)
	require.Equal(t, bookingModel.PaymentStatePending, reloaded.PaymentStatus)
	require.Equal(t, bookingModel.BookingStatusPending, reloaded.Status)
}

func TestRecordPaymentOnCancelledBooking(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)

	_, err = svc.CancelBooking(b.ID, "customer request")
	require.NoError(t, err)

	_, _, err = svc.RecordPayment(PaymentParams{
		BookingID:     b.ID,
		Amount:        100,
		PaymentMethod: bookingModel.PaymentMethodCash,
	})
	require.ErrorIs(t, err, ErrBookingClosed)
}

func TestDeletePaymentReconciles(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)

	payment, updated, err := svc.RecordPayment(PaymentParams{
		BookingID:     b.ID,
		Amount:        1700,
		PaymentMethod: bookingModel.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)
	require.Equal(t, bookingModel.PaymentStatePaid, updated.PaymentStatus)

	after, err := svc.DeletePayment(payment.ID)
	require.NoError(t, err)

	require.Equal(t, 0.0, after.AmountPaid)
	require.Equal(t, 1700.0, after.BalanceDue)
	require.Equal(t, bookingModel.PaymentStatePending, after.PaymentStatus)
	// Confirmation is not rolled back when a payment is removed.
	require.Equal(t, bookingModel.BookingStatusConfirmed, after.Status)
}

func TestUpdatePaymentStatusPullsAmountOut(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)

	payment, updated, err := svc.RecordPayment(PaymentParams{
		BookingID:     b.ID,
		Amount:        500,
		PaymentMethod: bookingModel.PaymentMethodCard,
	})
	require.NoError(t, err)
	require.Equal(t, bookingModel.PaymentStatePartial, updated.PaymentStatus)

	_, after, err := svc.UpdatePaymentStatus(payment.ID, bookingModel.PaymentStatusFailed)
	require.NoError(t, err)

	require.Equal(t, 0.0, after.AmountPaid)
	require.Equal(t, 1700.0, after.BalanceDue)
	require.Equal(t, bookingModel.PaymentStatePending, after.PaymentStatus)
}

func TestReferenceCollisionRegenerates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	taken, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)

	// First candidate collides with the existing booking; the generator is
	// asked again and the booking lands on the fresh reference.
	calls := 0
	svc.newReference = func(prefix string) (string, error) {
		calls++
		if calls == 1 {
			return taken.BookingReference, nil
		}
		return prefix + "ZZZZ99", nil
	}

	params := createParams(tr.ID, 1, 0)
	params.Email = "other@example.com"
	b, err := svc.CreateBooking(params)
	require.NoError(t, err)
	require.Equal(t, "RTZZZZ99", b.BookingReference)
	require.Equal(t, 2, calls)
}

func TestReferenceGenerationGivesUpAfterMaxAttempts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	taken, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)

	svc.newReference = func(string) (string, error) {
		return taken.BookingReference, nil
	}

	params := createParams(tr.ID, 1, 0)
	params.Email = "other@example.com"
	_, err = svc.CreateBooking(params)
	require.ErrorContains(t, err, "unique booking reference")
}

func TestConfirmBookingPersistsDetails(t *testing.T) {
	db := setupTestDB(t)
	rec := &notifier.Recorder{}
	svc := NewService(db, DefaultConfig(), rec)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)

	confirmedDate := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	confirmed, err := svc.ConfirmBooking(b.ID, ConfirmParams{
		ConfirmedDate: &confirmedDate,
		ConfirmedTime: "06:30",
		MeetingPoint:  "Nairobi office, Kenyatta Avenue",
		Notes:         "Bring passports for park entry",
	})
	require.NoError(t, err)

	require.Equal(t, bookingModel.BookingStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	require.Equal(t, []string{b.BookingReference}, rec.Confirmed)

	var reloaded bookingModel.Booking
	require.NoError(t, db.First(&reloaded, b.ID).Error)
	require.NotNil(t, reloaded.ConfirmedDate)
	require.True(t, confirmedDate.Equal(*reloaded.ConfirmedDate))
	require.Equal(t, "06:30", reloaded.ConfirmedTime)
	require.Equal(t, "Nairobi office, Kenyatta Avenue", reloaded.MeetingPoint)
	require.Contains(t, reloaded.Notes, "Bring passports")
}

func TestConfirmBookingFromNonPendingStatus(t *testing.T) {
	db := setupTestDB(t)
	rec := &notifier.Recorder{}
	svc := NewService(db, DefaultConfig(), rec)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)
	_, err = svc.BulkUpdateStatus([]uint{b.ID}, bookingModel.BookingStatusPaid)
	require.NoError(t, err)

	confirmed, err := svc.ConfirmBooking(b.ID, ConfirmParams{})
	require.NoError(t, err)
	require.Equal(t, bookingModel.BookingStatusConfirmed, confirmed.Status)
	require.Equal(t, []string{b.BookingReference}, rec.Confirmed)

	// Re-confirming updates details without emailing the customer again.
	again, err := svc.ConfirmBooking(b.ID, ConfirmParams{MeetingPoint: "Wilson Airport"})
	require.NoError(t, err)
	require.Equal(t, "Wilson Airport", again.MeetingPoint)
	require.Equal(t, []string{b.BookingReference}, rec.Confirmed)
}

func TestConfirmCancelledBookingRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)
	_, err = svc.CancelBooking(b.ID, "")
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(b.ID, ConfirmParams{})
	require.ErrorIs(t, err, ErrBookingClosed)
}

func TestApplyDiscountRecomputesTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)

	updated, err := svc.ApplyDiscount(b.ID, 200)
	require.NoError(t, err)

	require.Equal(t, 200.0, updated.DiscountAmount)
	require.Equal(t, 1700.0, updated.Subtotal)
	require.Equal(t, 1500.0, updated.TotalAmount)
	require.Equal(t, 1500.0, updated.BalanceDue)
	require.Equal(t, bookingModel.PaymentStatePending, updated.PaymentStatus)

	_, err = svc.ApplyDiscount(b.ID, -1)
	require.ErrorIs(t, err, ErrInvalidDiscount)
	_, err = svc.ApplyDiscount(b.ID, 1700.50)
	require.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestFullDiscountMarksBookingPaid(t *testing.T) {
	db := setupTestDB(t)
	rec := &notifier.Recorder{}
	svc := NewService(db, DefaultConfig(), rec)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)

	// A discount covering the whole subtotal settles the booking with no
	// payment rows at all.
	updated, err := svc.ApplyDiscount(b.ID, 1700)
	require.NoError(t, err)

	require.Equal(t, 0.0, updated.TotalAmount)
	require.Equal(t, 0.0, updated.BalanceDue)
	require.Equal(t, bookingModel.PaymentStatePaid, updated.PaymentStatus)
	require.Equal(t, bookingModel.BookingStatusConfirmed, updated.Status)
	require.Equal(t, []string{b.BookingReference}, rec.Confirmed)
}

func TestCheckBookingRequiresMatchingEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)

	found, err := svc.CheckBooking(b.BookingReference, "AMINA@example.com")
	require.NoError(t, err)
	require.Equal(t, b.ID, found.ID)

	_, err = svc.CheckBooking(b.BookingReference, "someone-else@example.com")
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBookingAppendsReason(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(b.ID, "flight moved")
	require.NoError(t, err)

	require.Equal(t, bookingModel.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.Contains(t, cancelled.Notes, "flight moved")

	_, err = svc.CancelBooking(b.ID, "again")
	require.ErrorIs(t, err, ErrBookingClosed)
}

func TestBulkUpdateStatusSkipsTerminal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b1, err := svc.CreateBooking(createParams(tr.ID, 1, 0))
	require.NoError(t, err)
	params := createParams(tr.ID, 1, 0)
	params.Email = "other@example.com"
	b2, err := svc.CreateBooking(params)
	require.NoError(t, err)

	_, err = svc.CancelBooking(b2.ID, "")
	require.NoError(t, err)

	changed, err := svc.BulkUpdateStatus([]uint{b1.ID, b2.ID}, bookingModel.BookingStatusConfirmed)
	require.NoError(t, err)
	require.EqualValues(t, 1, changed)

	var reloaded bookingModel.Booking
	require.NoError(t, db.First(&reloaded, b2.ID).Error)
	require.Equal(t, bookingModel.BookingStatusCancelled, reloaded.Status)
}

func TestBookingStats(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, DefaultConfig(), nil)
	tr := seedTour(t, db, 850)

	b1, err := svc.CreateBooking(createParams(tr.ID, 2, 0))
	require.NoError(t, err)
	params := createParams(tr.ID, 1, 0)
	params.Email = "other@example.com"
	_, err = svc.CreateBooking(params)
	require.NoError(t, err)

	_, _, err = svc.RecordPayment(PaymentParams{
		BookingID:     b1.ID,
		Amount:        1700,
		PaymentMethod: bookingModel.PaymentMethodCard,
	})
	require.NoError(t, err)

	stats, err := svc.BookingStats()
	require.NoError(t, err)

	require.EqualValues(t, 2, stats.TotalBookings)
	require.EqualValues(t, 1, stats.ByStatus[bookingModel.BookingStatusConfirmed])
	require.EqualValues(t, 1, stats.ByStatus[bookingModel.BookingStatusPending])
	require.Equal(t, 1700.0, stats.TotalRevenue)
	require.Equal(t, 850.0, stats.OutstandingAmount)
	require.EqualValues(t, 2, stats.ThisMonthBookings)
	require.Equal(t, 1700.0, stats.ThisMonthRevenue)
}
