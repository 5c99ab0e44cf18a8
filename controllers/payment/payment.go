package payment

import (
	"errors"

	"richman-tours/logger"
	bookingModel "richman-tours/models/booking"
	"richman-tours/services/ledger"
	"richman-tours/types"
	bookingTypes "richman-tours/types/booking"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentController struct {
	db             *gorm.DB
	ledger         *ledger.Service
	loggerInstance *logger.AsyncLogger
}

func NewPaymentController(db *gorm.DB, ledgerService *ledger.Service, asyncLogger *logger.AsyncLogger) *PaymentController {
	return &PaymentController{db: db, ledger: ledgerService, loggerInstance: asyncLogger}
}

// Create records a payment against a booking. A payment larger than the
// outstanding balance is rejected.
func (h *PaymentController) Create(c *fiber.Ctx) error {
	var req bookingTypes.PaymentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing payment request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	payment, b, err := h.ledger.RecordPayment(ledger.PaymentParams{
		BookingID:       req.BookingID,
		Amount:          req.Amount,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		TransactionID:   req.TransactionID,
		Notes:           req.Notes,
	})
	if err != nil {
		return h.mapLedgerError(c, err, "Failed to record payment")
	}

	logger.Success("Payment recorded for booking " + b.BookingReference)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Payment recorded",
		Status:  fiber.StatusCreated,
		Data: fiber.Map{
			"payment": payment,
			"booking": b,
		},
	})
}

// ListForBooking returns all payments on a booking, newest first.
func (h *PaymentController) ListForBooking(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid booking id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var payments []bookingModel.Payment
	err = h.db.Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		logger.Error("Failed to list payments", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list payments",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Payments fetched",
		Status:  fiber.StatusOK,
		Data:    payments,
	})
}

// UpdateStatus changes a payment's status and re-reconciles the booking.
func (h *PaymentController) UpdateStatus(c *fiber.Ctx) error {
	paymentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid payment id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var req bookingTypes.PaymentStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	payment, b, err := h.ledger.UpdatePaymentStatus(uint(paymentID), bookingModel.PaymentStatus(req.Status))
	if err != nil {
		return h.mapLedgerError(c, err, "Failed to update payment")
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Payment updated",
		Status:  fiber.StatusOK,
		Data: fiber.Map{
			"payment": payment,
			"booking": b,
		},
	})
}

// Delete removes a payment row; the booking aggregates are recomputed from
// what remains.
func (h *PaymentController) Delete(c *fiber.Ctx) error {
	paymentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid payment id",
			Status:  fiber.StatusBadRequest,
		})
	}

	b, err := h.ledger.DeletePayment(uint(paymentID))
	if err != nil {
		return h.mapLedgerError(c, err, "Failed to delete payment")
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Payment deleted",
		Status:  fiber.StatusOK,
		Data:    b,
	})
}

func (h *PaymentController) mapLedgerError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ledger.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Message: "Booking not found",
			Status:  fiber.StatusNotFound,
		})
	case errors.Is(err, ledger.ErrPaymentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Message: "Payment not found",
			Status:  fiber.StatusNotFound,
		})
	case errors.Is(err, ledger.ErrPaymentExceedsBalance):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Payment amount exceeds the outstanding balance",
			Status:  fiber.StatusBadRequest,
		})
	case errors.Is(err, ledger.ErrBookingClosed):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Booking is already completed or cancelled",
			Status:  fiber.StatusBadRequest,
		})
	case errors.Is(err, ledger.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	default:
		logger.Error(fallback, err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: fallback,
			Status:  fiber.StatusInternalServerError,
		})
	}
}
