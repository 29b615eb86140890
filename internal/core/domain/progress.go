package domain

import "time"

// MilestoneView is a catalog entry merged with the caller's tracker.
type MilestoneView struct {
	ID           string     `json:"id"`
	Frequency    Frequency  `json:"frequency"`
	DayCount     int        `json:"day_count"`
	Tag          string     `json:"tag"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CompletedOn  *time.Time `json:"completed_on"`
	SoberDays    int        `json:"sober_days"`
	MoneySaved   float64    `json:"money_saved"`
	UpdatedAt    *time.Time `json:"updated_at"`
	AllowCheckIn bool       `json:"allow_check_in"`
}

func NewMilestoneView(m *Milestone, t *Tracker, goal *Goal) *MilestoneView {
	v := &MilestoneView{
		ID:          m.ID,
		Frequency:   m.Frequency,
		DayCount:    m.DayCount,
		Tag:         m.Tag,
		Title:       m.Title,
		Description: m.Description,
	}
	if t != nil {
		updated := t.UpdatedAt
		v.CompletedOn = t.CompletedOn
		v.SoberDays = t.SoberDays
		v.MoneySaved = ComputeMoneySaved(t.SoberDays, goal)
		v.UpdatedAt = &updated
	}
	return v
}

// Progress is the {current, next} pair. Both are nil when the user has no
// usable goal.
type Progress struct {
	Current *MilestoneView `json:"current"`
	Next    *MilestoneView `json:"next"`
}

type WalletTotals struct {
	SoberDays  int     `json:"sober_days" db:"sober_days"`
	MoneySaved float64 `json:"money_saved" db:"money_saved"`
}

type WalletNext struct {
	DayCount int     `json:"day_count"`
	WillSave float64 `json:"will_save"`
}

type Wallet struct {
	Total WalletTotals `json:"total"`
	Next  *WalletNext  `json:"next"`
}
