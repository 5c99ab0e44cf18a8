package notifier

import (
	"fmt"
	"net/smtp"
	"os"
	"sync"

	"richman-tours/logger"
	bookingModel "richman-tours/models/booking"
)

// Notifier sends customer-facing emails for booking lifecycle events.
// Implementations must not block the caller; delivery is best effort.
type Notifier interface {
	BookingCreated(b *bookingModel.Booking)
	BookingConfirmed(b *bookingModel.Booking)
	InquiryReceived(inq *bookingModel.Inquiry)
}

// Noop discards every notification. Used when SMTP is not configured and in
// tests that do not care about email.
type Noop struct{}

func (Noop) BookingCreated(*bookingModel.Booking)   {}
func (Noop) BookingConfirmed(*bookingModel.Booking) {}
func (Noop) InquiryReceived(*bookingModel.Inquiry)  {}

// SMTPNotifier sends plain-text emails through a configured SMTP relay.
// Sends run in their own goroutine so a slow relay never holds up a booking.
type SMTPNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
	adminTo  string
}

// NewSMTPFromEnv builds a notifier from SMTP_* environment variables.
// Returns a Noop notifier when SMTP_HOST is unset.
func NewSMTPFromEnv() Notifier {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		logger.Warning("SMTP_HOST not set, email notifications disabled")
		return Noop{}
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
		adminTo:  os.Getenv("ADMIN_EMAIL"),
	}
}

func (n *SMTPNotifier) BookingCreated(b *bookingModel.Booking) {
	subject := "Booking received: " + b.BookingReference
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nWe have received your booking %s for %s.\r\n"+
			"Total amount: %.2f\r\nBalance due: %.2f\r\n\r\n"+
			"Your booking will be confirmed once payment is received.\r\n",
		b.Customer.FullName(), b.BookingReference, b.Tour.Title, b.TotalAmount, b.BalanceDue)
	n.sendAsync(b.Customer.Email, subject, body)
}

func (n *SMTPNotifier) BookingConfirmed(b *bookingModel.Booking) {
	subject := "Booking confirmed: " + b.BookingReference
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nYour booking %s is confirmed.\r\n"+
			"Departure: %s\r\n\r\nWe look forward to travelling with you.\r\n",
		b.Customer.FullName(), b.BookingReference, b.DepartureDate.Format("2006-01-02"))
	n.sendAsync(b.Customer.Email, subject, body)
}

func (n *SMTPNotifier) InquiryReceived(inq *bookingModel.Inquiry) {
	if n.adminTo == "" {
		return
	}
	subject := "New inquiry: " + inq.Subject
	body := fmt.Sprintf("From: %s <%s>\r\nType: %s\r\n\r\n%s\r\n",
		inq.Name, inq.Email, inq.InquiryType, inq.Message)
	n.sendAsync(n.adminTo, subject, body)
}

func (n *SMTPNotifier) sendAsync(to, subject, body string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(fmt.Sprintf("notifier panic: %v", r), nil)
			}
		}()
		if err := n.send(to, subject, body); err != nil {
			logger.Error("Failed to send notification email to "+to, err)
		}
	}()
}

func (n *SMTPNotifier) send(to, subject, body string) error {
	msg := []byte("From: " + n.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)

	addr := n.host + ":" + n.port
	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}
	return smtp.SendMail(addr, auth, n.from, []string{to}, msg)
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu        sync.Mutex
	Created   []string
	Confirmed []string
	Inquiries []string
}

func (r *Recorder) BookingCreated(b *bookingModel.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created = append(r.Created, b.BookingReference)
}

func (r *Recorder) BookingConfirmed(b *bookingModel.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Confirmed = append(r.Confirmed, b.BookingReference)
}

func (r *Recorder) InquiryReceived(inq *bookingModel.Inquiry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Inquiries = append(r.Inquiries, inq.Subject)
}
