// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createMeal = `
INSERT INTO meals (name, ingredients, allergens, spice_level, meal_image, category, cuisine, dish_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, name, ingredients, allergens, spice_level, meal_image, category, cuisine, dish_type, created_at, updated_at
`

type CreateMealParams struct {
	Name        string
	Ingredients string
	Allergens   string
	SpiceLevel  string
	MealImage   string
	Category    string
	Cuisine     string
	DishType    string
}

func (q *Queries) CreateMeal(ctx context.Context, arg CreateMealParams) (Meal, error) {
	now := time.Now().UTC()
	row := q.db.QueryRowContext(ctx, createMeal,
		arg.Name, arg.Ingredients, arg.Allergens, arg.SpiceLevel, arg.MealImage,
		arg.Category, arg.Cuisine, arg.DishType, now, now)
	var m Meal
	err := row.Scan(&m.ID, &m.Name, &m.Ingredients, &m.Allergens, &m.SpiceLevel,
		&m.MealImage, &m.Category, &m.Cuisine, &m.DishType, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const getMealByID = `
SELECT id, name, ingredients, allergens, spice_level, meal_image, category, cuisine, dish_type, created_at, updated_at
FROM meals WHERE id = ?
`

func (q *Queries) GetMealByID(ctx context.Context, id int64) (Meal, error) {
	row := q.db.QueryRowContext(ctx, getMealByID, id)
	var m Meal
	err := row.Scan(&m.ID, &m.Name, &m.Ingredients, &m.Allergens, &m.SpiceLevel,
		&m.MealImage, &m.Category, &m.Cuisine, &m.DishType, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const getMealByName = `
SELECT id, name, ingredients, allergens, spice_level, meal_image, category, cuisine, dish_type, created_at, updated_at
FROM meals WHERE name = ?
`

func (q *Queries) GetMealByName(ctx context.Context, name string) (Meal, error) {
	row := q.db.QueryRowContext(ctx, getMealByName, name)
	var m Meal
	err := row.Scan(&m.ID, &m.Name, &m.Ingredients, &m.Allergens, &m.SpiceLevel,
		&m.MealImage, &m.Category, &m.Cuisine, &m.DishType, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const listMeals = `
SELECT id, name, ingredients, allergens, spice_level, meal_image, category, cuisine, dish_type, created_at, updated_at
FROM meals ORDER BY name
`

func (q *Queries) ListMeals(ctx context.Context) ([]Meal, error) {
	rows, err := q.db.QueryContext(ctx, listMeals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var meals []Meal
	for rows.Next() {
		var m Meal
		if err := rows.Scan(&m.ID, &m.Name, &m.Ingredients, &m.Allergens, &m.SpiceLevel,
			&m.MealImage, &m.Category, &m.Cuisine, &m.DishType, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

const updateMeal = `
UPDATE meals
SET name = ?, ingredients = ?, allergens = ?, spice_level = ?, meal_image = ?,
    category = ?, cuisine = ?, dish_type = ?, updated_at = ?
WHERE id = ?
`

type UpdateMealParams struct {
	Name        string
	Ingredients string
	Allergens   string
	SpiceLevel  string
	MealImage   string
	Category    string
	Cuisine     string
	DishType    string
	ID          int64
}

func (q *Queries) UpdateMeal(ctx context.Context, arg UpdateMealParams) error {
	_, err := q.db.ExecContext(ctx, updateMeal,
		arg.Name, arg.Ingredients, arg.Allergens, arg.SpiceLevel, arg.MealImage,
		arg.Category, arg.Cuisine, arg.DishType, time.Now().UTC(), arg.ID)
	return err
}

const deleteMeal = `DELETE FROM meals WHERE id = ?`

func (q *Queries) DeleteMeal(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteMeal, id)
	return err
}

const countMeals = `SELECT COUNT(*) FROM meals`

func (q *Queries) CountMeals(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMeals).Scan(&n)
	return n, err
}
