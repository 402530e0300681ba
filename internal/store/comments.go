// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createComment = `
INSERT INTO comments (dish_id, author_id, content, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, dish_id, author_id, content, created_at, updated_at
`

type CreateCommentParams struct {
	DishID   int64
	AuthorID int64
	Content  string
}

func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	now := time.Now().UTC()
	row := q.db.QueryRowContext(ctx, createComment,
		arg.DishID, arg.AuthorID, arg.Content, now, now)
	var c Comment
	err := row.Scan(&c.ID, &c.DishID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listMealComments = `
SELECT c.id, c.dish_id, c.author_id, c.content, u.username, c.created_at
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.dish_id = ?
ORDER BY c.created_at, c.id
`

// ListMealComments returns the comments on a dish, oldest first, with
// each author's username resolved.
func (q *Queries) ListMealComments(ctx context.Context, dishID int64) ([]MealComment, error) {
	rows, err := q.db.QueryContext(ctx, listMealComments, dishID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comments []MealComment
	for rows.Next() {
		var c MealComment
		if err := rows.Scan(&c.ID, &c.DishID, &c.AuthorID, &c.Content, &c.Username, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

const listCommentsByAuthor = `
SELECT c.id, c.dish_id, c.content, m.name, c.created_at
FROM comments c
JOIN meals m ON m.id = c.dish_id
WHERE c.author_id = ?
ORDER BY c.created_at DESC
`

// ListCommentsByAuthor returns a user's comments across all dishes,
// newest first, with each dish name resolved.
func (q *Queries) ListCommentsByAuthor(ctx context.Context, authorID int64) ([]AuthorComment, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsByAuthor, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comments []AuthorComment
	for rows.Next() {
		var c AuthorComment
		if err := rows.Scan(&c.ID, &c.DishID, &c.Content, &c.DishName, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

const countMealComments = `SELECT COUNT(*) FROM comments WHERE dish_id = ?`

func (q *Queries) CountMealComments(ctx context.Context, dishID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countMealComments, dishID).Scan(&n)
	return n, err
}
