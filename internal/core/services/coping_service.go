package services

import (
	"context"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

type CopingService struct {
	repo domain.CopingRepository
}

func NewCopingService(repo domain.CopingRepository) *CopingService {
	return &CopingService{repo: repo}
}

type CopingInput struct {
	Feeling     string
	Title       string
	Strategy    string
	Description string
}

type UpdateCopingInput struct {
	ID     string
	UserID string
	CopingInput
}

// CreateMany validates every item before inserting any of them.
func (s *CopingService) CreateMany(ctx context.Context, userID string, inputs []CopingInput) ([]*domain.Coping, error) {
	items := make([]*domain.Coping, 0, len(inputs))
	for _, in := range inputs {
		c, err := domain.NewCoping(userID, in.Feeling, in.Title, in.Strategy, in.Description)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}

	if err := s.repo.CreateMany(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CopingService) List(ctx context.Context, userID, feeling string, page domain.PageRequest) (*domain.Page[*domain.Coping], error) {
	page = page.Normalize()
	items, total, err := s.repo.List(ctx, domain.CopingFilter{UserID: userID, Feeling: feeling, Page: page})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Coping{}
	}
	return &domain.Page[*domain.Coping]{Items: items, Pagination: domain.NewPagination(page, total)}, nil
}

func (s *CopingService) owned(ctx context.Context, id, userID string) (*domain.Coping, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, domain.ErrCopingNotFound
	}
	return c, nil
}

func (s *CopingService) Update(ctx context.Context, input UpdateCopingInput) (*domain.Coping, error) {
	c, err := s.owned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := c.Update(input.Feeling, input.Title, input.Strategy, input.Description); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CopingService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
