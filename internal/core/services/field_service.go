package services

import (
	"context"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

type FieldService struct {
	repo domain.FieldRepository
}

func NewFieldService(repo domain.FieldRepository) *FieldService {
	return &FieldService{repo: repo}
}

// Grouped returns lookup values keyed by field name, in repository order.
func (s *FieldService) Grouped(ctx context.Context) (map[string][]domain.Field, error) {
	fields, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.Field)
	for _, f := range fields {
		grouped[f.Field] = append(grouped[f.Field], f)
	}
	return grouped, nil
}
