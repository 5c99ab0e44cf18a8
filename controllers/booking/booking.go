package booking

import (
	"errors"
	"time"

	"richman-tours/logger"
	bookingModel "richman-tours/models/booking"
	"richman-tours/services/ledger"
	"richman-tours/types"
	bookingTypes "richman-tours/types/booking"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BookingController struct {
	db             *gorm.DB
	ledger         *ledger.Service
	loggerInstance *logger.AsyncLogger
}

func NewBookingController(db *gorm.DB, ledgerService *ledger.Service, asyncLogger *logger.AsyncLogger) *BookingController {
	return &BookingController{db: db, ledger: ledgerService, loggerInstance: asyncLogger}
}

// Create takes a public booking request and opens a pending booking.
func (h *BookingController) Create(c *fiber.Ctx) error {
	var req bookingTypes.BookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing booking request body", err)
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

	params, err := paramsFromRequest(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	b, err := h.ledger.CreateBooking(params)
	if err != nil {
		if errors.Is(err, ledger.ErrTourNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "Tour not found or no longer available",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to create booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to create booking",
			Status:  fiber.StatusInternalServerError,
		})
	}

	logger.Success("Booking created: " + b.BookingReference)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Booking created",
		Status:  fiber.StatusCreated,
		Data:    b,
	})
}

func paramsFromRequest(req bookingTypes.BookingCreateRequest) (ledger.CreateBookingParams, error) {
	departure, err := time.Parse("2006-01-02", req.DepartureDate)
	if err != nil {
		return ledger.CreateBookingParams{}, errors.New("invalid departure_date")
	}
	ret, err := time.Parse("2006-01-02", req.ReturnDate)
	if err != nil {
		return ledger.CreateBookingParams{}, errors.New("invalid return_date")
	}

	guests := make([]ledger.GuestParams, 0, len(req.Guests))
	for _, g := range req.Guests {
		var dob *time.Time
		if g.DateOfBirth != "" {
			parsed, err := time.Parse("2006-01-02", g.DateOfBirth)
			if err != nil {
				return ledger.CreateBookingParams{}, errors.New("invalid guest date_of_birth")
			}
			dob = &parsed
		}
		guests = append(guests, ledger.GuestParams{
			GuestType:      g.GuestType,
			FirstName:      g.FirstName,
			LastName:       g.LastName,
			DateOfBirth:    dob,
			Nationality:    g.Nationality,
			PassportNumber: g.PassportNumber,
		})
	}

	return ledger.CreateBookingParams{
		TourID:           req.TourID,
		DepartureDate:    departure,
		ReturnDate:       ret,
		NumberOfAdults:   req.NumberOfAdults,
		NumberOfChildren: req.NumberOfChildren,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		City:             req.City,
		Country:          req.Country,
		SpecialRequests:  req.SpecialRequests,
		Guests:           guests,
	}, nil
}

// Check is the public lookup by reference plus the booking email.
func (h *BookingController) Check(c *fiber.Ctx) error {
	var req bookingTypes.BookingCheckRequest
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

	b, err := h.ledger.CheckBooking(req.BookingReference, req.Email)
	if err != nil {
		if errors.Is(err, ledger.ErrBookingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "No booking matches that reference and email",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Booking check failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Booking check failed",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Booking found",
		Status:  fiber.StatusOK,
		Data:    b,
	})
}

// GetByReference returns the full booking for the management dashboard.
func (h *BookingController) GetByReference(c *fiber.Ctx) error {
	b, err := h.ledger.GetByReference(c.Params("reference"))
	if err != nil {
		if errors.Is(err, ledger.ErrBookingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "Booking not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to load booking", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to load booking",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Booking fetched",
		Status:  fiber.StatusOK,
		Data:    b,
	})
}

// CustomerBookings lists bookings made under an email, newest first.
func (h *BookingController) CustomerBookings(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "email query parameter is required",
			Status:  fiber.StatusBadRequest,
		})
	}

	bookings, err := h.ledger.BookingsForCustomer(email)
	if err != nil {
		logger.Error("Failed to list customer bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list bookings",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Bookings fetched",
		Status:  fiber.StatusOK,
		Data:    bookings,
	})
}

// List returns bookings for the management dashboard with optional status
// and payment_status filters and limit/offset paging.
func (h *BookingController) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	q := h.db.Model(&bookingModel.Booking{}).
		Preload("Tour").Preload("Customer").
		Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		q = q.Where("payment_status = ?", paymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		logger.Error("Failed to count bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list bookings",
			Status:  fiber.StatusInternalServerError,
		})
	}

	var bookings []bookingModel.Booking
	if err := q.Limit(limit).Offset(offset).Find(&bookings).Error; err != nil {
		logger.Error("Failed to list bookings", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list bookings",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Bookings fetched",
		Status:  fiber.StatusOK,
		Data: fiber.Map{
			"total":    total,
			"limit":    limit,
			"offset":   offset,
			"bookings": bookings,
		},
	})
}

// Confirm manually confirms a booking, optionally fixing the confirmed
// departure date, time and meeting point.
func (h *BookingController) Confirm(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid booking id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var req bookingTypes.ConfirmRequest
	// The body is optional; ignore parse errors for an empty body.
	_ = c.BodyParser(&req)
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
		})
	}

	params := ledger.ConfirmParams{
		ConfirmedTime: req.ConfirmedTime,
		MeetingPoint:  req.MeetingPoint,
		Notes:         req.Notes,
	}
	if req.ConfirmedDate != "" {
		confirmedDate, err := time.Parse("2006-01-02", req.ConfirmedDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Message: "invalid confirmed_date",
				Status:  fiber.StatusBadRequest,
			})
		}
		params.ConfirmedDate = &confirmedDate
	}

	b, err := h.ledger.ConfirmBooking(uint(bookingID), params)
	if err != nil {
		return h.mapLedgerError(c, err, "Failed to confirm booking")
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Booking confirmed",
		Status:  fiber.StatusOK,
		Data:    b,
	})
}

// Discount sets the discount amount on a booking.
func (h *BookingController) Discount(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid booking id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var req bookingTypes.DiscountRequest
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

	b, err := h.ledger.ApplyDiscount(uint(bookingID), req.DiscountAmount)
	if err != nil {
		return h.mapLedgerError(c, err, "Failed to apply discount")
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Discount applied",
		Status:  fiber.StatusOK,
		Data:    b,
	})
}

// Cancel cancels a booking with an optional reason.
func (h *BookingController) Cancel(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid booking id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var req bookingTypes.CancelRequest
	// The body is optional; ignore parse errors for an empty body.
	_ = c.BodyParser(&req)

	b, err := h.ledger.CancelBooking(uint(bookingID), req.Reason)
	if err != nil {
		return h.mapLedgerError(c, err, "Failed to cancel booking")
	}

	logger.Info("Booking cancelled: " + b.BookingReference)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Booking cancelled",
		Status:  fiber.StatusOK,
		Data:    b,
	})
}

// BulkStatus moves a set of bookings to one status.
func (h *BookingController) BulkStatus(c *fiber.Ctx) error {
	var req bookingTypes.BulkStatusUpdateRequest
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

	changed, err := h.ledger.BulkUpdateStatus(req.BookingIDs, bookingModel.BookingStatus(req.Status))
	if err != nil {
		return h.mapLedgerError(c, err, "Failed to update bookings")
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Bookings updated",
		Status:  fiber.StatusOK,
		Data:    fiber.Map{"updated": changed},
	})
}

// Stats returns the dashboard aggregates.
func (h *BookingController) Stats(c *fiber.Ctx) error {
	stats, err := h.ledger.BookingStats()
	if err != nil {
		logger.Error("Failed to compute booking stats", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to compute booking stats",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Stats fetched",
		Status:  fiber.StatusOK,
		Data:    stats,
	})
}

func (h *BookingController) mapLedgerError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ledger.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Message: "Booking not found",
			Status:  fiber.StatusNotFound,
		})
	case errors.Is(err, ledger.ErrBookingClosed):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Booking is already completed or cancelled",
			Status:  fiber.StatusBadRequest,
		})
	case errors.Is(err, ledger.ErrInvalidDiscount):
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Discount must be between zero and the booking subtotal",
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
