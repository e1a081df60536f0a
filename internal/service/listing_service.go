package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"codemarket/internal/catalog"
	"codemarket/internal/domain"
	"codemarket/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionForm is the user-supplied part of a new listing. Tags is the raw
// comma-separated input.
type SubmissionForm struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Tags         string `json:"tags" validate:"required"`
	CodePreview  string `json:"codePreview" validate:"required"`
	PreviewImage string `json:"previewImage" validate:"required"`
}

// ListingService defines the interface for listing business logic
type ListingService interface {
	Submit(ctx context.Context, author string, form SubmissionForm) (*domain.Listing, error)
	Browse(ctx context.Context, filter catalog.Filter) []domain.Listing
	Categories(ctx context.Context) []string
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
}

type listingService struct {
	repo     repository.ListingRepository
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewListingService creates a new instance of ListingService
func NewListingService(repo repository.ListingRepository, logger *zap.Logger) ListingService {
	return newListingService(repo, logger, time.Now)
}

func newListingService(repo repository.ListingRepository, logger *zap.Logger, now func() time.Time) *listingService {
	return &listingService{
		repo:     repo,
		validate: newValidator(),
		logger:   logger,
		now:      now,
	}
}

// Submit validates form and appends a new listing sold by author
func (s *listingService) Submit(ctx context.Context, author string, form SubmissionForm) (*domain.Listing, error) {
	if author == "" {
		return nil, domain.ErrWalletDisconnected
	}

	var fieldErrors []domain.FieldError
	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("failed to validate submission: %w", err)
		}
		for _, e := range verrs {
			fieldErrors = append(fieldErrors, domain.FieldError{Field: e.Field(), Message: requiredMessage})
		}
	}

	tags := SplitTags(form.Tags)
	if form.Tags != "" && len(tags) == 0 {
		fieldErrors = append(fieldErrors, domain.FieldError{Field: "tags", Message: "At least one tag is required"})
	}

	if len(fieldErrors) > 0 {
		return nil, &domain.ValidationError{Fields: fieldErrors}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate listing id: %w", err)
	}

	listing := domain.Listing{
		ID:           id.String(),
		Title:        form.Title,
		Description:  form.Description,
		Price:        domain.ListingPrice,
		Author:       author,
		Rating:       0,
		Sales:        0,
		Category:     form.Category,
		Tags:         tags,
		CodePreview:  form.CodePreview,
		PreviewImage: form.PreviewImage,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Append(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to save listing: %w", err)
	}

	s.logger.Info("Listing submitted",
		zap.String("listing_id", listing.ID),
		zap.String("author", author),
		zap.String("category", listing.Category),
	)

	return &listing, nil
}

// Browse returns the catalog view for filter
func (s *listingService) Browse(ctx context.Context, filter catalog.Filter) []domain.Listing {
	return catalog.Derive(s.repo.GetAll(ctx), filter)
}

// Categories returns every category in use
func (s *listingService) Categories(ctx context.Context) []string {
	return catalog.Categories(s.repo.GetAll(ctx))
}

// GetByID retrieves a listing by ID
func (s *listingService) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

// SplitTags splits comma-separated input into trimmed, non-empty tags
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

const requiredMessage = "This field is required"

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
