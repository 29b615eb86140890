package domain

import "context"

// Field is a lookup value offered by the onboarding forms, grouped by Field.
type Field struct {
	ID    string `json:"id" db:"id"`
	Field string `json:"-" db:"field"`
	Name  string `json:"name" db:"name"`
}

type FieldRepository interface {
	List(ctx context.Context) ([]Field, error)
}
