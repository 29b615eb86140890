package services

import (
	"context"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

type JournalService struct {
	repo domain.JournalRepository
}

func NewJournalService(repo domain.JournalRepository) *JournalService {
	return &JournalService{repo: repo}
}

type UpdateJournalInput struct {
	ID          string
	UserID      string
	Feeling     string
	Description string
}

func (s *JournalService) Create(ctx context.Context, userID, feeling, description string) (*domain.Journal, error) {
	j, err := domain.NewJournal(userID, feeling, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *JournalService) List(ctx context.Context, userID string, page domain.PageRequest) (*domain.Page[*domain.Journal], error) {
	page = page.Normalize()
	items, total, err := s.repo.ListByUserID(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Journal{}
	}
	return &domain.Page[*domain.Journal]{Items: items, Pagination: domain.NewPagination(page, total)}, nil
}

func (s *JournalService) owned(ctx context.Context, id, userID string) (*domain.Journal, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != userID {
		return nil, domain.ErrJournalNotFound
	}
	return j, nil
}

func (s *JournalService) Update(ctx context.Context, input UpdateJournalInput) (*domain.Journal, error) {
	j, err := s.owned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := j.Update(input.Feeling, input.Description); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *JournalService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
