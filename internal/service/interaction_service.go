package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

type interactionRepository interface {
	List(ctx context.Context, filter models.InteractionFilter) ([]models.AIInteraction, int, error)
}

// InteractionService exposes the recorded assistant exchanges.
type InteractionService struct {
	repo   interactionRepository
	logger *zap.Logger
}

// NewInteractionService constructs an InteractionService.
func NewInteractionService(repo interactionRepository, logger *zap.Logger) *InteractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionService{repo: repo, logger: logger}
}

// List returns one page of the caller's interactions.
func (s *InteractionService) List(ctx context.Context, filter models.InteractionFilter) ([]models.AIInteraction, *models.Pagination, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, nil, appErrors.Validation("end_date must not be before start_date")
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interactions")
	}
	page, size := normalisePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func normalisePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
