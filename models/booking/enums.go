package booking

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRefunded  BookingStatus = "refunded"
)

func (bs BookingStatus) String() string {
	return string(bs)
}

// IsValid reports whether bs is a known booking status.
func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusPaid,
		BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the booking can no longer change state.
func (bs BookingStatus) IsTerminal() bool {
	return bs == BookingStatusCompleted || bs == BookingStatusCancelled || bs == BookingStatusRefunded
}

// AllBookingStatuses returns every valid booking status.
func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusPaid,
		BookingStatusCompleted,
		BookingStatusCancelled,
		BookingStatusRefunded,
	}
}

// PaymentState is the booking-level payment aggregate state, derived from the
// completed payments on the booking.
type PaymentState string

const (
	PaymentStatePending  PaymentState = "pending"
	PaymentStatePartial  PaymentState = "partial"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateFailed   PaymentState = "failed"
	PaymentStateRefunded PaymentState = "refunded"
)

func (ps PaymentState) String() string {
	return string(ps)
}

// PaymentStatus is the state of an individual payment row.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

func (ps PaymentStatus) String() string {
	return string(ps)
}

// IsValid reports whether ps is a known payment status.
func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}
