package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/google/uuid"
)

type AuthService struct {
	repo        domain.UserRepository
	tokens      *TokenService
	progression *ProgressionService
	mailer      domain.Mailer
	now         func() time.Time
}

func NewAuthService(repo domain.UserRepository, tokens *TokenService, progression *ProgressionService, mailer domain.Mailer) *AuthService {
	return &AuthService{
		repo:        repo,
		tokens:      tokens,
		progression: progression,
		mailer:      mailer,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type GoalInput struct {
	Amount     float64
	Frequency  string
	GoalType   string
	OnAverage  float64
	ActualGoal string
}

func (g *GoalInput) toDomain() (*domain.Goal, error) {
	if g == nil {
		return nil, nil
	}
	goal, err := domain.NewGoal(g.Amount, g.Frequency)
	if err != nil {
		return nil, err
	}
	goal.GoalType = g.GoalType
	goal.OnAverage = g.OnAverage
	goal.ActualGoal = g.ActualGoal
	return goal, nil
}

type ProfileInput struct {
	FirstName   string
	LastName    string
	UserName    string
	AlcoholType string
	Improvement []string
	Goal        *GoalInput
}

type RegisterInput struct {
	Email    string
	Password string
	ProfileInput
}

type SocialInput struct {
	Provider   string
	ProviderID string
	Email      string
	ProfileInput
}

// Session is what every successful sign-in returns.
type Session struct {
	User     *domain.User     `json:"user"`
	Tokens   *TokenPair       `json:"tokens"`
	Progress *domain.Progress `json:"milestones"`
}

func applyProfile(u *domain.User, in ProfileInput) error {
	userName := in.UserName
	if strings.TrimSpace(userName) == "" {
		userName = strings.Split(u.Email, "@")[0]
	}
	if err := u.SetUserName(userName); err != nil {
		return err
	}

	goal, err := in.Goal.toDomain()
	if err != nil {
		return err
	}

	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.AlcoholType = strings.TrimSpace(in.AlcoholType)
	u.Improvement = in.Improvement
	u.Goal = goal
	return nil
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	user, err := domain.NewUser(uuid.NewString(), input.Email)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := applyProfile(user, input.ProfileInput); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "provider", user.Provider)
	return s.session(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsLocal() || user.CheckPassword(password) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.session(ctx, user)
}

func (s *AuthService) SocialRegister(ctx context.Context, input SocialInput) (*Session, error) {
	if _, err := s.repo.GetByProvider(ctx, input.Provider, input.ProviderID); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user, err := domain.NewSocialUser(uuid.NewString(), input.Email, input.Provider, input.ProviderID)
	if err != nil {
		return nil, err
	}

	if err := applyProfile(user, input.ProfileInput); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create social user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "provider", user.Provider)
	return s.session(ctx, user)
}

func (s *AuthService) SocialLogin(ctx context.Context, provider, providerID string) (*Session, error) {
	if !domain.IsSocialProvider(provider) {
		return nil, domain.ErrInvalidProvider
	}

	user, err := s.repo.GetByProvider(ctx, provider, providerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	return s.session(ctx, user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, jti, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	if err := s.tokens.Revoke(ctx, jti); err != nil {
		return nil, fmt.Errorf("auth service: rotate refresh token: %w", err)
	}

	return s.tokens.GenerateTokenPair(userID)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	_, jti, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, jti)
}

// ForgotPassword never reveals whether the address is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsLocal() {
		slog.Info("password reset skipped for social account", "user_id", user.ID)
		return nil
	}

	code, err := user.IssueResetCode(s.now())
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("auth service: store reset code: %w", err)
	}

	if err := s.mailer.SendResetCode(ctx, user.Email, user.FirstName, code); err != nil {
		return fmt.Errorf("auth service: send reset code: %w", err)
	}
	return nil
}

func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) error {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetCode
		}
		return err
	}
	return user.VerifyResetCode(code, s.now())
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetCode
		}
		return err
	}

	if err := user.VerifyResetCode(code, s.now()); err != nil {
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	user.ClearResetCode()

	return s.repo.Update(ctx, user)
}

func (s *AuthService) session(ctx context.Context, user *domain.User) (*Session, error) {
	tokens, err := s.tokens.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, err
	}

	progress, err := s.progression.ResolveForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return &Session{User: user, Tokens: tokens, Progress: progress}, nil
}
