package review

import (
	"errors"
	"fmt"
	"math"
	"strings"

	tourModel "richman-tours/models/tour"

	"gorm.io/gorm"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	ErrTourNotFound    = errors.New("tour not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("a review from this email already exists for the tour")
)

// Service owns tour reviews and the denormalized rating columns on tours.
// Reviews come in unapproved; approving (or removing) one recomputes the
// tour's rating and total_reviews from the approved rows, so the columns
// never drift from the reviews on file.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SubmitParams is the parsed input for Submit.
type SubmitParams struct {
	TourSlug string
	Name     string
	Email    string
	Rating   int
	Title    string
	Comment  string
}

// Submit stores an unapproved review against an active tour. One review per
// email per tour; a second submission is rejected, not overwritten.
func (s *Service) Submit(params SubmitParams) (*tourModel.Review, error) {
	var t tourModel.Tour
	if err := s.db.Where("slug = ? AND is_active = ?", params.TourSlug, true).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("load tour: %w", err)
	}

	r := tourModel.Review{
		TourID:  t.ID,
		Name:    params.Name,
		Email:   strings.ToLower(strings.TrimSpace(params.Email)),
		Rating:  params.Rating,
		Title:   params.Title,
		Comment: params.Comment,
	}
	if err := s.db.Create(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &r, nil
}

// ApprovedForTour lists the approved reviews of a tour, newest first.
func (s *Service) ApprovedForTour(tourSlug string) ([]tourModel.Review, error) {
	var t tourModel.Tour
	if err := s.db.Where("slug = ?", tourSlug).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}

	var reviews []tourModel.Review
	err := s.db.Where("tour_id = ? AND is_approved = ?", t.ID, true).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Pending lists the reviews awaiting moderation, oldest first.
func (s *Service) Pending() ([]tourModel.Review, error) {
	var reviews []tourModel.Review
	err := s.db.Where("is_approved = ?", false).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}

// Approve marks a review approved and folds it into the tour's rating.
func (s *Service) Approve(reviewID uint) (*tourModel.Review, error) {
	var r tourModel.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", reviewID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		if !r.IsApproved {
			r.IsApproved = true
			if err := tx.Save(&r).Error; err != nil {
				return fmt.Errorf("approve review: %w", err)
			}
		}
		return s.recomputeRating(tx, r.TourID)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a review and recomputes the tour's rating without it.
func (s *Service) Delete(reviewID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var r tourModel.Review
		if err := tx.Where("id = ?", reviewID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		if err := tx.Delete(&r).Error; err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		return s.recomputeRating(tx, r.TourID)
	})
}

// recomputeRating rewrites the tour's rating and total_reviews from the
// approved reviews on file. With none left both columns go back to zero.
func (s *Service) recomputeRating(tx *gorm.DB, tourID uint) error {
	type aggregate struct {
		Avg   float64
		Count int64
	}
	var agg aggregate
	err := tx.Model(&tourModel.Review{}).
		Where("tour_id = ? AND is_approved = ?", tourID, true).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("aggregate reviews: %w", err)
	}

	rating := math.Round(agg.Avg*100) / 100
	return tx.Model(&tourModel.Tour{}).
		Where("id = ?", tourID).
		Updates(map[string]interface{}{
			"rating":        rating,
			"total_reviews": agg.Count,
		}).Error
}
