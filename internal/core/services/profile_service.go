package services

import (
	"context"
	"strings"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

type ProfileService struct {
	repo        domain.UserRepository
	progression *ProgressionService
}

func NewProfileService(repo domain.UserRepository, progression *ProgressionService) *ProfileService {
	return &ProfileService{
		repo:        repo,
		progression: progression,
	}
}

type EditProfileInput struct {
	UserID      string
	FirstName   string
	LastName    string
	UserName    string
	Bio         *string
	AlcoholType string
	Improvement []string
}

type ProfileView struct {
	User     *domain.User     `json:"user"`
	Progress *domain.Progress `json:"milestones"`
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := s.progression.ResolveForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return &ProfileView{User: user, Progress: progress}, nil
}

func (s *ProfileService) Edit(ctx context.Context, input EditProfileInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.UserName != "" && input.UserName != user.UserName {
		if err := user.SetUserName(input.UserName); err != nil {
			return nil, err
		}
	}

	user.FirstName = mergeString(strings.TrimSpace(input.FirstName), user.FirstName)
	user.LastName = mergeString(strings.TrimSpace(input.LastName), user.LastName)
	user.AlcoholType = mergeString(strings.TrimSpace(input.AlcoholType), user.AlcoholType)
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Improvement != nil {
		user.Improvement = input.Improvement
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateGoal switches the user onto the chain for the new frequency and
// returns the freshly resolved progress.
func (s *ProfileService) UpdateGoal(ctx context.Context, userID string, input GoalInput) (*ProfileView, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	goal, err := input.toDomain()
	if err != nil {
		return nil, err
	}
	user.SetGoal(goal)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	progress, err := s.progression.ResolveForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Progress: progress}, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.IsLocal() {
		return domain.ErrSocialAccount
	}
	if user.CheckPassword(oldPassword) != nil {
		return domain.ErrInvalidCredentials
	}
	if oldPassword == newPassword {
		return domain.ErrPasswordUnchanged
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.repo.Update(ctx, user)
}

func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}
