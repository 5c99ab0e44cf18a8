package booking

import (
	"time"
)

// Payment is a single payment recorded against a booking. Only payments in
// the completed status count toward the booking's amount_paid.
type Payment struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID uint `gorm:"not null;index" json:"booking_id"`

	Amount          float64 `gorm:"not null" json:"amount"`
	PaymentMethod   string  `gorm:"type:varchar(20);not null" json:"payment_method"`
	ReferenceNumber string  `gorm:"type:varchar(100)" json:"reference_number"`
	TransactionID   string  `gorm:"type:varchar(100)" json:"transaction_id"`

	Status      PaymentStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`

	Notes         string `gorm:"type:text" json:"notes"`
	ReceiptNumber string `gorm:"type:varchar(50)" json:"receipt_number"`
}

// Payment methods accepted at the desk and online.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodPaypal       = "paypal"
	PaymentMethodOther        = "other"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodMobileMoney, PaymentMethodPaypal, PaymentMethodOther:
		return true
	default:
		return false
	}
}
