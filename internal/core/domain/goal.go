package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidGoal      = errors.New("invalid goal configuration")
	ErrInvalidFrequency = errors.New("invalid frequency (must be daily, weekly, or monthly)")
	ErrInvalidAmount    = errors.New("goal amount cannot be negative")
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

var daysPerUnit = map[Frequency]int{
	FrequencyDaily:   1,
	FrequencyWeekly:  7,
	FrequencyMonthly: 30,
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", ErrInvalidFrequency
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	_, ok := daysPerUnit[f]
	return ok
}

// DaysPerUnit is both the savings divisor and the chain step for f.
// Unknown frequencies report 0.
func (f Frequency) DaysPerUnit() int {
	return daysPerUnit[f]
}

type Goal struct {
	Amount     float64   `json:"amount" db:"goal_amount"`
	Frequency  Frequency `json:"frequency" db:"goal_frequency"`
	GoalType   string    `json:"goal_type,omitempty" db:"goal_type"`
	OnAverage  float64   `json:"on_average,omitempty" db:"goal_on_average"`
	ActualGoal string    `json:"actual_goal,omitempty" db:"goal_actual"`
}

func NewGoal(amount float64, frequency string) (*Goal, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	f, err := ParseFrequency(frequency)
	if err != nil {
		return nil, err
	}
	return &Goal{Amount: amount, Frequency: f}, nil
}

func (g *Goal) Valid() bool {
	return g != nil && g.Frequency.Valid()
}

// ComputeMoneySaved converts sober days into the user's goal currency.
// A missing goal or an unknown frequency yields 0.
func ComputeMoneySaved(soberDays int, goal *Goal) float64 {
	if !goal.Valid() {
		return 0
	}
	return (float64(soberDays) / float64(goal.Frequency.DaysPerUnit())) * goal.Amount
}
