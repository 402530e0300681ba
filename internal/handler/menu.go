// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dkhalife/sufra/internal/middleware"
	"github.com/dkhalife/sufra/internal/model"
	"github.com/dkhalife/sufra/internal/render"
	"github.com/dkhalife/sufra/internal/service"
	"github.com/dkhalife/sufra/internal/store"
)

// commentPolicy strips all markup from submitted comments. Comments are
// plain text; templates escape on output, this guards storage.
var commentPolicy = bluemonday.StrictPolicy()

// MenuHandler serves the public menu pages and comment submission.
type MenuHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(db *sql.DB, renderer *render.Renderer) *MenuHandler {
	return &MenuHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: service.NewEventService(db),
	}
}

// Menu renders the public menu listing every meal.
// GET /menu
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	meals, err := h.queries.ListMeals(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list meals", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "meals/menu", render.TemplateData{
		Title: "Menu",
		User:  middleware.GetUser(r),
		Data:  meals,
	}); err != nil {
		logAndInternalError(w, "failed to render menu page", "error", err)
	}
}

// mealDetailData is the payload for the meal detail template.
type mealDetailData struct {
	Meal     store.Meal
	Comments []store.MealComment
}

// MealDetail renders a single dish with its comments, oldest first.
// GET /menu/meal/{mealId}
func (h *MenuHandler) MealDetail(w http.ResponseWriter, r *http.Request) {
	mealID, ok := parseIDParam(r, "mealId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	meal, ok := requireEntityWithError(w, "meal", mealID,
		func(id int64) (store.Meal, error) { return h.queries.GetMealByID(r.Context(), id) })
	if !ok {
		return
	}

	comments, err := h.queries.ListMealComments(r.Context(), meal.ID)
	if err != nil {
		logAndInternalError(w, "failed to list meal comments", "error", err, "meal_id", meal.ID)
		return
	}

	if err := h.renderer.Render(w, r, "meals/meal", render.TemplateData{
		Title: meal.Name,
		User:  middleware.GetUser(r),
		Data:  mealDetailData{Meal: meal, Comments: comments},
	}); err != nil {
		logAndInternalError(w, "failed to render meal page", "error", err)
	}
}

// CreateComment stores a visitor comment on a dish. The author always
// comes from the session, never from the form.
// POST /menu/meal/{mealId}/create-comment
func (h *MenuHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	mealID, ok := parseIDParam(r, "mealId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	mealURL := fmt.Sprintf(redirectMenuMeal, mealID)

	if !parseFormOrRedirect(w, r, h.renderer, mealURL) {
		return
	}

	content := strings.TrimSpace(commentPolicy.Sanitize(r.FormValue("content")))
	if content == "" {
		flashError(w, r, h.renderer, mealURL, msgCommentRequired)
		return
	}

	// Confirm the dish exists before inserting so a stale form gets a
	// 404 instead of a foreign key error.
	meal, ok := requireEntityWithError(w, "meal", mealID,
		func(id int64) (store.Meal, error) { return h.queries.GetMealByID(r.Context(), id) })
	if !ok {
		return
	}

	comment, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		DishID:   meal.ID,
		AuthorID: user.ID,
		Content:  content,
	})
	if err != nil {
		logAndInternalError(w, "failed to create comment", "error", err, "meal_id", meal.ID)
		return
	}

	slog.Info("comment created", "comment_id", comment.ID, "meal_id", meal.ID, "user_id", user.ID)
	_ = h.eventService.LogCommentEvent(r.Context(), model.EventLevelInfo, "Comment created",
		&user.ID, clientIP(r), middleware.GetRequestPath(r.Context()),
		map[string]any{"meal_id": meal.ID, "comment_id": comment.ID})

	http.Redirect(w, r, mealURL, http.StatusSeeOther)
}
