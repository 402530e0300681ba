// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/dkhalife/sufra/internal/model"
)

// User is a registered account row.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         model.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// Meal is a catalog dish row.
type Meal struct {
	ID          int64
	Name        string
	Ingredients string
	Allergens   string
	SpiceLevel  string
	MealImage   string
	Category    string
	Cuisine     string
	DishType    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ThumbnailImage returns the thumbnail variant path for the meal's
// cover image. The upload pipeline always crops a thumbnail next to
// the original, so the path only needs rewriting. Images that did not
// come through the pipeline are returned unchanged.
func (m Meal) ThumbnailImage() string {
	const prefix = "/uploads/originals/"
	if !strings.HasPrefix(m.MealImage, prefix) {
		return m.MealImage
	}
	return "/uploads/" + model.VariantThumbnail + "/" + strings.TrimPrefix(m.MealImage, prefix)
}

// Comment is a remark left by a customer on a dish.
type Comment struct {
	ID        int64
	DishID    int64
	AuthorID  int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MealComment is a comment joined with its author's username,
// as shown on the dish detail page.
type MealComment struct {
	ID        int64
	DishID    int64
	AuthorID  int64
	Content   string
	Username  string
	CreatedAt time.Time
}

// AuthorComment is a comment joined with the dish it belongs to,
// as shown on the profile page.
type AuthorComment struct {
	ID        int64
	DishID    int64
	Content   string
	DishName  string
	CreatedAt time.Time
}

// Event is an application event log row.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}
