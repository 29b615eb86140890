package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/comitanigiacomo/sober-engine/internal/core/services"
)

type capturingMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *capturingMailer) SendResetCode(ctx context.Context, email, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[email] = code
	return nil
}

func (m *capturingMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (r *memoryRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = make(map[string]bool)
	}
	r.revoked[jti] = true
	return nil
}

func (r *memoryRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revoked[jti], nil
}

type authFixture struct {
	*progressionFixture
	mailer  *capturingMailer
	auth    *services.AuthService
	profile *services.ProfileService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := newProgressionFixture(t)
	mailer := &capturingMailer{}
	tokens := services.NewTokenService("services-test-secret", "sober-engine-test", time.Hour, f.users).
		WithRefresh(time.Hour, &memoryRevocations{})

	return &authFixture{
		progressionFixture: f,
		mailer:             mailer,
		auth:               services.NewAuthService(f.users, tokens, f.progression, mailer),
		profile:            services.NewProfileService(f.users, f.progression),
	}
}

func registerInput(email string) services.RegisterInput {
	return services.RegisterInput{
		Email:    email,
		Password: "sobersecret",
		ProfileInput: services.ProfileInput{
			FirstName: "Sam",
			Goal:      &services.GoalInput{Amount: 10, Frequency: "daily"},
		},
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: returns tokens and the seed as current milestone", func(t *testing.T) {
		f := newAuthFixture(t)

		s, err := f.auth.Register(ctx, registerInput("New@Sober.app"))
		require.NoError(t, err)
		assert.Equal(t, "new@sober.app", s.User.Email)
		assert.Equal(t, "new", s.User.UserName)
		assert.NotEmpty(t, s.Tokens.AccessToken)
		assert.NotEmpty(t, s.Tokens.RefreshToken)
		require.NotNil(t, s.Progress.Current)
		assert.Equal(t, 1, s.Progress.Current.DayCount)
		assert.True(t, s.Progress.Current.AllowCheckIn)
	})

	t.Run("Success: no goal yields an empty progress pair", func(t *testing.T) {
		f := newAuthFixture(t)
		in := registerInput("nogoal@sober.app")
		in.Goal = nil

		s, err := f.auth.Register(ctx, in)
		require.NoError(t, err)
		assert.Nil(t, s.Progress.Current)
		assert.Nil(t, s.Progress.Next)
	})

	t.Run("Fail: duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.auth.Register(ctx, registerInput("dup@sober.app"))
		require.NoError(t, err)

		in := registerInput("dup@sober.app")
		in.UserName = "someone-else"
		_, err = f.auth.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("Fail: short password", func(t *testing.T) {
		f := newAuthFixture(t)
		in := registerInput("short@sober.app")
		in.Password = "short"

		_, err := f.auth.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("Fail: unknown goal frequency", func(t *testing.T) {
		f := newAuthFixture(t)
		in := registerInput("yearly@sober.app")
		in.Goal.Frequency = "yearly"

		_, err := f.auth.Register(ctx, in)
		assert.Error(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.auth.Register(ctx, registerInput("login@sober.app"))
	require.NoError(t, err)

	t.Run("Success: case-insensitive email", func(t *testing.T) {
		s, err := f.auth.Login(ctx, "  LOGIN@sober.app ", "sobersecret")
		require.NoError(t, err)
		assert.Equal(t, "login@sober.app", s.User.Email)
	})

	t.Run("Fail: wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "login@sober.app", "not-the-password")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Fail: unknown email", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "ghost@sober.app", "sobersecret")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_Social(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	in := services.SocialInput{
		Provider:   domain.ProviderGoogle,
		ProviderID: "g-123",
		Email:      "social@sober.app",
		ProfileInput: services.ProfileInput{
			Goal: &services.GoalInput{Amount: 20, Frequency: "weekly"},
		},
	}

	t.Run("Success: register then login", func(t *testing.T) {
		reg, err := f.auth.SocialRegister(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, domain.ProviderGoogle, reg.User.Provider)

		s, err := f.auth.SocialLogin(ctx, domain.ProviderGoogle, "g-123")
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, s.User.ID)
		require.NotNil(t, s.Progress.Current)
		assert.Equal(t, domain.FrequencyWeekly, s.Progress.Current.Frequency)
	})

	t.Run("Fail: second registration for the same provider id", func(t *testing.T) {
		_, err := f.auth.SocialRegister(ctx, in)
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("Fail: unknown provider", func(t *testing.T) {
		_, err := f.auth.SocialLogin(ctx, "myspace", "g-123")
		assert.ErrorIs(t, err, domain.ErrInvalidProvider)
	})

	t.Run("Fail: password login on a social account", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "social@sober.app", "")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	s, err := f.auth.Register(ctx, registerInput("refresh@sober.app"))
	require.NoError(t, err)

	t.Run("Success: refresh rotates the token", func(t *testing.T) {
		pair, err := f.auth.Refresh(ctx, s.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, s.Tokens.RefreshToken, pair.RefreshToken)

		_, err = f.auth.Refresh(ctx, s.Tokens.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

		require.NoError(t, f.auth.Logout(ctx, pair.RefreshToken))
		_, err = f.auth.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
	})

	t.Run("Fail: access token is not a refresh token", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, s.Tokens.AccessToken)
		assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.auth.Register(ctx, registerInput("reset@sober.app"))
	require.NoError(t, err)

	t.Run("Success: unknown address is silent", func(t *testing.T) {
		require.NoError(t, f.auth.ForgotPassword(ctx, "nobody@sober.app"))
		assert.Empty(t, f.mailer.code("nobody@sober.app"))
	})

	t.Run("Fail: wrong code", func(t *testing.T) {
		require.NoError(t, f.auth.ForgotPassword(ctx, "reset@sober.app"))
		code := f.mailer.code("reset@sober.app")
		require.Len(t, code, 6)

		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		assert.ErrorIs(t, f.auth.VerifyResetCode(ctx, "reset@sober.app", wrong), domain.ErrInvalidResetCode)
	})

	t.Run("Success: verify, reset and log in with the new password", func(t *testing.T) {
		require.NoError(t, f.auth.ForgotPassword(ctx, "reset@sober.app"))
		code := f.mailer.code("reset@sober.app")

		require.NoError(t, f.auth.VerifyResetCode(ctx, "reset@sober.app", code))
		require.NoError(t, f.auth.ResetPassword(ctx, "reset@sober.app", code, "brand-new-secret"))

		_, err := f.auth.Login(ctx, "reset@sober.app", "brand-new-secret")
		require.NoError(t, err)

		// the code is single use
		err = f.auth.ResetPassword(ctx, "reset@sober.app", code, "another-secret")
		assert.ErrorIs(t, err, domain.ErrInvalidResetCode)
	})
}

func TestProfileService(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: change password", func(t *testing.T) {
		f := newAuthFixture(t)
		s, err := f.auth.Register(ctx, registerInput("pw@sober.app"))
		require.NoError(t, err)

		require.NoError(t, f.profile.ChangePassword(ctx, s.User.ID, "sobersecret", "even-more-secret"))
		_, err = f.auth.Login(ctx, "pw@sober.app", "even-more-secret")
		assert.NoError(t, err)
	})

	t.Run("Fail: change password rules", func(t *testing.T) {
		f := newAuthFixture(t)
		s, err := f.auth.Register(ctx, registerInput("rules@sober.app"))
		require.NoError(t, err)

		assert.ErrorIs(t, f.profile.ChangePassword(ctx, s.User.ID, "wrong-password", "whatever-else"), domain.ErrInvalidCredentials)
		assert.ErrorIs(t, f.profile.ChangePassword(ctx, s.User.ID, "sobersecret", "sobersecret"), domain.ErrPasswordUnchanged)
		assert.ErrorIs(t, f.profile.ChangePassword(ctx, s.User.ID, "sobersecret", "short"), domain.ErrPasswordTooShort)
	})

	t.Run("Success: update goal switches the chain", func(t *testing.T) {
		f := newAuthFixture(t)
		s, err := f.auth.Register(ctx, registerInput("switch@sober.app"))
		require.NoError(t, err)

		view, err := f.profile.UpdateGoal(ctx, s.User.ID, services.GoalInput{Amount: 70, Frequency: "monthly"})
		require.NoError(t, err)
		require.NotNil(t, view.Progress.Current)
		assert.Equal(t, domain.FrequencyMonthly, view.Progress.Current.Frequency)
		assert.Equal(t, 1, view.Progress.Current.DayCount)

		stored, err := f.users.GetByID(ctx, s.User.ID)
		require.NoError(t, err)
		assert.Equal(t, 70.0, stored.Goal.Amount)
	})

	t.Run("Success: edit keeps unset fields", func(t *testing.T) {
		f := newAuthFixture(t)
		s, err := f.auth.Register(ctx, registerInput("edit@sober.app"))
		require.NoError(t, err)

		bio := "one day at a time"
		u, err := f.profile.Edit(ctx, services.EditProfileInput{UserID: s.User.ID, LastName: "Rivera", Bio: &bio})
		require.NoError(t, err)
		assert.Equal(t, "Sam", u.FirstName)
		assert.Equal(t, "Rivera", u.LastName)
		assert.Equal(t, bio, u.Bio)
	})

	t.Run("Fail: taken user name", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.auth.Register(ctx, registerInput("first@sober.app"))
		require.NoError(t, err)
		s, err := f.auth.Register(ctx, registerInput("second@sober.app"))
		require.NoError(t, err)

		_, err = f.profile.Edit(ctx, services.EditProfileInput{UserID: s.User.ID, UserName: "first"})
		assert.ErrorIs(t, err, domain.ErrUserNameTaken)
	})

	t.Run("Success: delete", func(t *testing.T) {
		f := newAuthFixture(t)
		s, err := f.auth.Register(ctx, registerInput("bye@sober.app"))
		require.NoError(t, err)

		require.NoError(t, f.profile.Delete(ctx, s.User.ID))
		_, err = f.profile.Get(ctx, s.User.ID)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
