package review

import (
	"testing"

	tourModel "richman-tours/models/tour"

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

	err = db.AutoMigrate(&tourModel.Category{}, &tourModel.Tour{}, &tourModel.Review{})
	require.NoError(t, err)
	return db
}

func seedTour(t *testing.T, db *gorm.DB) *tourModel.Tour {
	t.Helper()
	cat := tourModel.Category{Name: "Safari " + t.Name(), Slug: tourModel.Slugify("safari " + t.Name())}
	require.NoError(t, db.Create(&cat).Error)

	tr := tourModel.Tour{
		Title:          "Amboseli Explorer",
		Slug:           tourModel.Slugify("amboseli " + t.Name()),
		CategoryID:     cat.ID,
		Description:    "Elephants under Kilimanjaro",
		Price:          650,
		DurationDays:   2,
		DurationNights: 1,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&tr).Error)
	return &tr
}

func submitParams(slug, email string, rating int) SubmitParams {
	return SubmitParams{
		TourSlug: slug,
		Name:     "Wanjiru K",
		Email:    email,
		Rating:   rating,
		Title:    "Unforgettable",
		Comment:  "The guides knew every corner of the park.",
	}
}

func TestSubmitStartsUnapproved(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	tr := seedTour(t, db)

	r, err := svc.Submit(submitParams(tr.Slug, "wanjiru@example.com", 5))
	require.NoError(t, err)
	require.False(t, r.IsApproved)

	// Unapproved reviews are invisible publicly and leave the tour untouched.
	listed, err := svc.ApprovedForTour(tr.Slug)
	require.NoError(t, err)
	require.Empty(t, listed)

	var reloaded tourModel.Tour
	require.NoError(t, db.First(&reloaded, tr.ID).Error)
	require.Equal(t, 0.0, reloaded.Rating)
	require.EqualValues(t, 0, reloaded.TotalReviews)
}

func TestSubmitUnknownTour(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.Submit(submitParams("no-such-tour", "wanjiru@example.com", 4))
	require.ErrorIs(t, err, ErrTourNotFound)
}

func TestSubmitRejectsSecondReviewPerEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	tr := seedTour(t, db)

	_, err := svc.Submit(submitParams(tr.Slug, "wanjiru@example.com", 5))
	require.NoError(t, err)

	_, err = svc.Submit(submitParams(tr.Slug, "Wanjiru@Example.com", 1))
	require.ErrorIs(t, err, ErrDuplicateReview)
}

func TestApproveRecomputesTourRating(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	tr := seedTour(t, db)

	first, err := svc.Submit(submitParams(tr.Slug, "wanjiru@example.com", 5))
	require.NoError(t, err)
	second, err := svc.Submit(submitParams(tr.Slug, "otieno@example.com", 4))
	require.NoError(t, err)

	_, err = svc.Approve(first.ID)
	require.NoError(t, err)

	var reloaded tourModel.Tour
	require.NoError(t, db.First(&reloaded, tr.ID).Error)
	require.Equal(t, 5.0, reloaded.Rating)
	require.EqualValues(t, 1, reloaded.TotalReviews)

	_, err = svc.Approve(second.ID)
	require.NoError(t, err)

	require.NoError(t, db.First(&reloaded, tr.ID).Error)
	require.Equal(t, 4.5, reloaded.Rating)
	require.EqualValues(t, 2, reloaded.TotalReviews)

	listed, err := svc.ApprovedForTour(tr.Slug)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestDeleteRecomputesTourRating(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	tr := seedTour(t, db)

	r, err := svc.Submit(submitParams(tr.Slug, "wanjiru@example.com", 3))
	require.NoError(t, err)
	_, err = svc.Approve(r.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(r.ID))

	var reloaded tourModel.Tour
	require.NoError(t, db.First(&reloaded, tr.ID).Error)
	require.Equal(t, 0.0, reloaded.Rating)
	require.EqualValues(t, 0, reloaded.TotalReviews)

	require.ErrorIs(t, svc.Delete(r.ID), ErrReviewNotFound)
}

func TestPendingListsUnapprovedOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	tr := seedTour(t, db)

	approved, err := svc.Submit(submitParams(tr.Slug, "wanjiru@example.com", 5))
	require.NoError(t, err)
	_, err = svc.Approve(approved.ID)
	require.NoError(t, err)

	waiting, err := svc.Submit(submitParams(tr.Slug, "otieno@example.com", 2))
	require.NoError(t, err)

	pending, err := svc.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, waiting.ID, pending[0].ID)
}
