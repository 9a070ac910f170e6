package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID
	Title     string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Template struct {
	ID        uuid.UUID
	Title     string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Prompt struct {
	ID         uuid.UUID
	UserID     string
	ProjectID  uuid.NullUUID
	TemplateID uuid.NullUUID
	Name       string
	Prompt     string
	OrderNum   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
