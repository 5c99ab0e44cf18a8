package tour

import (
	"errors"

	"richman-tours/logger"
	tourModel "richman-tours/models/tour"
	"richman-tours/services/review"
	"richman-tours/types"
	tourTypes "richman-tours/types/tour"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TourController struct {
	db             *gorm.DB
	reviews        *review.Service
	loggerInstance *logger.AsyncLogger
}

func NewTourController(db *gorm.DB, reviewService *review.Service, asyncLogger *logger.AsyncLogger) *TourController {
	return &TourController{db: db, reviews: reviewService, loggerInstance: asyncLogger}
}

// List returns active tours with optional category, difficulty and search
// filters plus limit/offset paging.
func (h *TourController) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	q := h.db.Model(&tourModel.Tour{}).
		Preload("Category").Preload("Destinations").
		Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		q = q.Joins("JOIN categories ON categories.id = tours.category_id").
			Where("categories.slug = ?", category)
	}
	if destination := c.Query("destination"); destination != "" {
		q = q.Joins("JOIN tour_destinations ON tour_destinations.tour_id = tours.id").
			Joins("JOIN destinations ON destinations.id = tour_destinations.destination_id").
			Where("destinations.slug = ?", destination)
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if maxPrice := c.QueryFloat("max_price"); maxPrice > 0 {
		q = q.Where("price <= ?", maxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		logger.Error("Failed to count tours", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list tours",
			Status:  fiber.StatusInternalServerError,
		})
	}

	var tours []tourModel.Tour
	if err := q.Order("is_featured DESC, created_at DESC").Limit(limit).Offset(offset).Find(&tours).Error; err != nil {
		logger.Error("Failed to list tours", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list tours",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Tours fetched",
		Status:  fiber.StatusOK,
		Data: fiber.Map{
			"total":  total,
			"limit":  limit,
			"offset": offset,
			"tours":  tours,
		},
	})
}

// Detail returns one tour by slug and bumps its view counter.
func (h *TourController) Detail(c *fiber.Ctx) error {
	var t tourModel.Tour
	err := h.db.Preload("Category").Preload("Destinations").
		Where("slug = ? AND is_active = ?", c.Params("slug"), true).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "Tour not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to load tour", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to load tour",
			Status:  fiber.StatusInternalServerError,
		})
	}

	// Best effort; a failed counter bump should not break the page.
	if err := h.db.Model(&t).UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
		logger.Warning("Failed to bump tour views: " + err.Error())
	}
	t.ViewsCount++

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Tour fetched",
		Status:  fiber.StatusOK,
		Data:    t,
	})
}

// Featured returns the featured active tours.
func (h *TourController) Featured(c *fiber.Ctx) error {
	var tours []tourModel.Tour
	err := h.db.Preload("Category").
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("rating DESC").
		Limit(12).
		Find(&tours).Error
	if err != nil {
		logger.Error("Failed to list featured tours", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list featured tours",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Featured tours fetched",
		Status:  fiber.StatusOK,
		Data:    tours,
	})
}

// Reviews returns the approved reviews of a tour.
func (h *TourController) Reviews(c *fiber.Ctx) error {
	reviews, err := h.reviews.ApprovedForTour(c.Params("slug"))
	if err != nil {
		if errors.Is(err, review.ErrTourNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "Tour not found",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to list reviews", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list reviews",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Reviews fetched",
		Status:  fiber.StatusOK,
		Data:    reviews,
	})
}

// CreateReview takes a public review submission; it stays hidden until a
// staff member approves it.
func (h *TourController) CreateReview(c *fiber.Ctx) error {
	var req tourTypes.ReviewCreateRequest
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

	r, err := h.reviews.Submit(review.SubmitParams{
		TourSlug: c.Params("slug"),
		Name:     req.Name,
		Email:    req.Email,
		Rating:   req.Rating,
		Title:    req.Title,
		Comment:  req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, review.ErrTourNotFound):
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "Tour not found",
				Status:  fiber.StatusNotFound,
			})
		case errors.Is(err, review.ErrDuplicateReview):
			return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
				Message: "You have already reviewed this tour",
				Status:  fiber.StatusConflict,
			})
		default:
			logger.Error("Failed to create review", err)
			return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
				Message: "Failed to create review",
				Status:  fiber.StatusInternalServerError,
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Review submitted and awaiting approval",
		Status:  fiber.StatusCreated,
		Data:    r,
	})
}

// PendingReviews lists the reviews awaiting moderation.
func (h *TourController) PendingReviews(c *fiber.Ctx) error {
	reviews, err := h.reviews.Pending()
	if err != nil {
		logger.Error("Failed to list pending reviews", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list pending reviews",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Pending reviews fetched",
		Status:  fiber.StatusOK,
		Data:    reviews,
	})
}

// ApproveReview publishes a review and recomputes the tour rating.
func (h *TourController) ApproveReview(c *fiber.Ctx) error {
	reviewID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid review id",
			Status:  fiber.StatusBadRequest,
		})
	}

	r, err := h.reviews.Approve(uint(reviewID))
	if err != nil {
		return h.mapReviewError(c, err, "Failed to approve review")
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Review approved",
		Status:  fiber.StatusOK,
		Data:    r,
	})
}

// DeleteReview removes a review and recomputes the tour rating.
func (h *TourController) DeleteReview(c *fiber.Ctx) error {
	reviewID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid review id",
			Status:  fiber.StatusBadRequest,
		})
	}

	if err := h.reviews.Delete(uint(reviewID)); err != nil {
		return h.mapReviewError(c, err, "Failed to delete review")
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Review deleted",
		Status:  fiber.StatusOK,
	})
}

func (h *TourController) mapReviewError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, review.ErrReviewNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Message: "Review not found",
			Status:  fiber.StatusNotFound,
		})
	}
	logger.Error(fallback, err)
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Message: fallback,
		Status:  fiber.StatusInternalServerError,
	})
}

// Categories returns all tour categories.
func (h *TourController) Categories(c *fiber.Ctx) error {
	var categories []tourModel.Category
	if err := h.db.Order("name").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list categories",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Categories fetched",
		Status:  fiber.StatusOK,
		Data:    categories,
	})
}

// Destinations returns all destinations, featured first.
func (h *TourController) Destinations(c *fiber.Ctx) error {
	var destinations []tourModel.Destination
	if err := h.db.Order("is_featured DESC, name").Find(&destinations).Error; err != nil {
		logger.Error("Failed to list destinations", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "Failed to list destinations",
			Status:  fiber.StatusInternalServerError,
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Destinations fetched",
		Status:  fiber.StatusOK,
		Data:    destinations,
	})
}
