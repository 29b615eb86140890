package domain_test

import (
	"testing"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	t.Run("Success: create and partial update", func(t *testing.T) {
		j, err := domain.NewJournal("u1", " calm ", "Went for a walk")
		require.NoError(t, err)
		assert.Equal(t, "calm", j.Feeling)
		assert.Equal(t, j.CreatedAt, j.UpdatedAt)

		require.NoError(t, j.Update("", "Went for a long walk"))
		assert.Equal(t, "calm", j.Feeling)
		assert.Equal(t, "Went for a long walk", j.Description)
	})

	t.Run("Fail: missing feeling", func(t *testing.T) {
		_, err := domain.NewJournal("u1", "", "text")
		assert.ErrorIs(t, err, domain.ErrFeelingRequired)
	})

	t.Run("Fail: missing description", func(t *testing.T) {
		_, err := domain.NewJournal("u1", "sad", "  ")
		assert.ErrorIs(t, err, domain.ErrDescriptionRequired)
	})
}

func TestCoping(t *testing.T) {
	t.Run("Success: create", func(t *testing.T) {
		c, err := domain.NewCoping("u1", "anxious", "Breathing", "Box breathing 4x4", "")
		require.NoError(t, err)
		assert.Equal(t, "Breathing", c.Title)
	})

	t.Run("Fail: missing strategy", func(t *testing.T) {
		_, err := domain.NewCoping("u1", "anxious", "Breathing", "", "")
		assert.ErrorIs(t, err, domain.ErrCopingStrategyEmpty)
	})
}

func TestPod(t *testing.T) {
	t.Run("Success: creator is the first member", func(t *testing.T) {
		p, err := domain.NewPod("u1", "Evening Group", "", "")
		require.NoError(t, err)
		assert.Equal(t, domain.PrivacyPublic, p.PrivacyLevel)
		assert.True(t, p.IsMember("u1"))
		assert.False(t, p.IsMember("u2"))
	})

	t.Run("Fail: bad privacy", func(t *testing.T) {
		_, err := domain.NewPod("u1", "Group", "", "secret")
		assert.ErrorIs(t, err, domain.ErrInvalidPrivacy)
	})

	t.Run("Fail: empty message", func(t *testing.T) {
		_, err := domain.NewPodMessage("p1", "u1", "   ")
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	})
}

func TestNewNotifications(t *testing.T) {
	t.Run("Success: one record per distinct recipient", func(t *testing.T) {
		items, err := domain.NewNotifications(nil, []string{"u1", "u2", "u1", ""}, nil, domain.NotificationChat, "Hi", "body")
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.NotEqual(t, items[0].ID, items[1].ID)
	})

	t.Run("Fail: unknown type", func(t *testing.T) {
		_, err := domain.NewNotifications(nil, []string{"u1"}, nil, "spam", "Hi", "")
		assert.ErrorIs(t, err, domain.ErrInvalidNotificationType)
	})

	t.Run("Fail: no recipients", func(t *testing.T) {
		_, err := domain.NewNotifications(nil, nil, nil, domain.NotificationPod, "Hi", "")
		assert.ErrorIs(t, err, domain.ErrNoRecipients)
	})
}
