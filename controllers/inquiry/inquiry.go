package inquiry

import (
	"errors"
	"strings"
	"time"

	"richman-tours/logger"
	bookingModel "richman-tours/models/booking"
	"richman-tours/services/notifier"
	"richman-tours/types"
	bookingTypes "richman-tours/types/booking"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type InquiryController struct {
	db             *gorm.DB
	notifier       notifier.Notifier
	loggerInstance *logger.AsyncLogger
}

func NewInquiryController(db *gorm.DB, n notifier.Notifier, asyncLogger *logger.AsyncLogger) *InquiryController {
	if n == nil {
		n = notifier.Noop{}
	}
	return &InquiryController{db: db, notifier: n, loggerInstance: asyncLogger}
}

// Create stores a contact form or tour inquiry submission.
func (h *InquiryController) Create(c *fiber.Ctx) error {
	var req bookingTypes.InquiryCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing inquiry request body", err)
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

	inquiryType := req.InquiryType
	if inquiryType == "" {
		inquiryType = bookingModel.InquiryTypeGeneral
	}

	inq := bookingModel.Inquiry{
		Name:              req.Name,
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:             req.Phone,
		InquiryType:       inquiryType,
		Subject:           req.Subject,
		Message:           req.Message,
		TourID:            req.TourID,
		Status:            bookingModel.InquiryStatusNew,
		NumberOfTravelers: req.NumberOfTravelers,
		BudgetRange:       req.BudgetRange,
	}
	if req.PreferredTravelDates != "" {
		if parsed, err := time.Parse("2006-01-02", req.PreferredTravelDates); err == nil {
			inq.PreferredTravelDates = &parsed
		}
	}

	if err := h.db.Create(&inq).Error; err != nil {
		logger.Error("Failed to create inquiry", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to submit inquiry",
			Status:  fiber.StatusInternalServerError,
		})
	}

	h.notifier.InquiryReceived(&inq)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Inquiry submitted",
		Status:  fiber.StatusCreated,
		Data:    inq,
	})
}

// List returns inquiries for the management dashboard, optionally filtered
// by status and type.
func (h *InquiryController) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	q := h.db.Model(&bookingModel.Inquiry{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if inquiryType := c.Query("type"); inquiryType != "" {
		q = q.Where("inquiry_type = ?", inquiryType)
	}

	var inquiries []bookingModel.Inquiry
	if err := q.Limit(limit).Offset(offset).Find(&inquiries).Error; err != nil {
		logger.Error("Failed to list inquiries", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list inquiries",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Inquiries fetched",
		Status:  fiber.StatusOK,
		Data:    inquiries,
	})
}

// Resolve marks an inquiry resolved and stamps the resolution time.
func (h *InquiryController) Resolve(c *fiber.Ctx) error {
	inquiryID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid inquiry id",
			Status:  fiber.StatusBadRequest,
		})
	}

	var inq bookingModel.Inquiry
	if err := h.db.First(&inq, inquiryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "Inquiry not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to load inquiry", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to load inquiry",
			Status:  fiber.StatusInternalServerError,
		})
	}

	nowT := time.Now()
	inq.Status = bookingModel.InquiryStatusResolved
	inq.ResolvedAt = &nowT
	if err := h.db.Save(&inq).Error; err != nil {
		logger.Error("Failed to resolve inquiry", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to resolve inquiry",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Inquiry resolved",
		Status:  fiber.StatusOK,
		Data:    inq,
	})
}

// Subscribe adds an email to the newsletter or reactivates a previously
// unsubscribed one.
func (h *InquiryController) Subscribe(c *fiber.Ctx) error {
	var req bookingTypes.NewsletterSubscribeRequest
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

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var sub bookingModel.Newsletter
	err := h.db.Where("email = ?", email).First(&sub).Error
	switch {
	case err == nil:
		if sub.IsActive {
			return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
				Message: "Already subscribed",
				Status:  fiber.StatusOK,
				Data:    sub,
			})
		}
		sub.IsActive = true
		sub.UnsubscribedAt = nil
		if req.Name != "" {
			sub.Name = req.Name
		}
		if err := h.db.Save(&sub).Error; err != nil {
			logger.Error("Failed to reactivate subscription", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Message: "Failed to subscribe",
				Status:  fiber.StatusInternalServerError,
			})
		}
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Message: "Subscription reactivated",
			Status:  fiber.StatusOK,
			Data:    sub,
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = bookingModel.Newsletter{Email: email, Name: req.Name, IsActive: true}
		if err := h.db.Create(&sub).Error; err != nil {
			logger.Error("Failed to create subscription", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Message: "Failed to subscribe",
				Status:  fiber.StatusInternalServerError,
			})
		}
		return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
			Message: "Subscribed to newsletter",
			Status:  fiber.StatusCreated,
			Data:    sub,
		})
	default:
		logger.Error("Failed to look up subscription", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to subscribe",
			Status:  fiber.StatusInternalServerError,
		})
	}
}

// Unsubscribe deactivates a subscription; the row is kept for history.
func (h *InquiryController) Unsubscribe(c *fiber.Ctx) error {
	var req bookingTypes.NewsletterUnsubscribeRequest
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

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var sub bookingModel.Newsletter
	if err := h.db.Where("email = ?", email).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "Subscription not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to look up subscription", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to unsubscribe",
			Status:  fiber.StatusInternalServerError,
		})
	}

	nowT := time.Now()
	sub.IsActive = false
	sub.UnsubscribedAt = &nowT
	if err := h.db.Save(&sub).Error; err != nil {
		logger.Error("Failed to unsubscribe", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to unsubscribe",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Unsubscribed from newsletter",
		Status:  fiber.StatusOK,
	})
}
