// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dkhalife/sufra/internal/middleware"
	"github.com/dkhalife/sufra/internal/model"
	"github.com/dkhalife/sufra/internal/render"
	"github.com/dkhalife/sufra/internal/service"
	"github.com/dkhalife/sufra/internal/store"
)

// MealHandler serves the admin-only meal management routes.
type MealHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
	mediaService *service.MediaService
}

// NewMealHandler creates a new MealHandler.
func NewMealHandler(db *sql.DB, renderer *render.Renderer, ms *service.MediaService) *MealHandler {
	return &MealHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: service.NewEventService(db),
		mediaService: ms,
	}
}

// List renders the admin meal catalog. Same query as the public menu,
// different template.
// GET /meals
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	meals, err := h.queries.ListMeals(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list meals", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "meals/all_meals", render.TemplateData{
		Title: "All Meals",
		User:  middleware.GetUser(r),
		Data:  meals,
	}); err != nil {
		logAndInternalError(w, "failed to render meals page", "error", err)
	}
}

// NewForm renders the meal creation form.
// GET /meals/create
func (h *MealHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "meals/new_meal", render.TemplateData{
		Title: "New Meal",
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "failed to render new meal page", "error", err)
	}
}

// mealForm holds the text fields of a meal create/edit submission.
type mealForm struct {
	Name        string
	Ingredients string
	Allergens   string
	SpiceLevel  string
	Category    string
	Cuisine     string
	DishType    string
}

// parseMealForm reads the meal fields out of a parsed multipart form.
func parseMealForm(r *http.Request) mealForm {
	return mealForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Ingredients: strings.TrimSpace(r.FormValue("ingredients")),
		Allergens:   strings.TrimSpace(r.FormValue("allergens")),
		SpiceLevel:  strings.TrimSpace(r.FormValue("spice_level")),
		Category:    strings.TrimSpace(r.FormValue("category")),
		Cuisine:     strings.TrimSpace(r.FormValue("cuisine")),
		DishType:    strings.TrimSpace(r.FormValue("dish_type")),
	}
}

// Create handles the meal creation form. The cover image is processed
// before the INSERT: an upload failure aborts the whole operation so a
// meal never points at a missing image.
// POST /meals/create
func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, redirectMealsCreate, "Invalid form data")
		return
	}

	form := parseMealForm(r)
	if form.Name == "" || form.Ingredients == "" || form.Allergens == "" {
		flashError(w, r, h.renderer, redirectMealsCreate, msgMealFieldsRequired)
		return
	}

	// Pre-check the name for a friendly duplicate message. The UNIQUE
	// constraint remains the source of truth under races.
	if _, err := h.queries.GetMealByName(r.Context(), form.Name); err == nil {
		flashError(w, r, h.renderer, redirectMealsCreate, msgMealExists)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "database error during meal create", "error", err)
		return
	}

	imagePath, ok := h.uploadCover(w, r, redirectMealsCreate)
	if !ok {
		return
	}

	meal, err := h.queries.CreateMeal(r.Context(), store.CreateMealParams{
		Name:        form.Name,
		Ingredients: form.Ingredients,
		Allergens:   form.Allergens,
		SpiceLevel:  form.SpiceLevel,
		MealImage:   imagePath,
		Category:    form.Category,
		Cuisine:     form.Cuisine,
		DishType:    form.DishType,
	})
	if err != nil {
		// Clean up the orphaned upload before reporting
		if imagePath != "" {
			if delErr := h.mediaService.DeleteByImagePath(imagePath); delErr != nil {
				slog.Error("failed to remove orphaned upload", "error", delErr, "path", imagePath)
			}
		}
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, redirectMealsCreate, msgMealExists)
			return
		}
		logAndInternalError(w, "failed to create meal", "error", err)
		return
	}

	userID := middleware.GetUserIDPtr(r)
	slog.Info("meal created", "meal_id", meal.ID, "name", meal.Name)
	_ = h.eventService.LogMealEvent(r.Context(), model.EventLevelInfo, "Meal created",
		userID, clientIP(r), middleware.GetRequestPath(r.Context()),
		map[string]any{"meal_id": meal.ID, "name": meal.Name})

	flashSuccess(w, r, h.renderer, redirectMeals, "Meal created")
}

// Detail renders the admin view of a single meal.
// GET /meals/{mealId}
func (h *MealHandler) Detail(w http.ResponseWriter, r *http.Request) {
	mealID, ok := parseIDParam(r, "mealId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	meal, ok := requireEntityWithRedirect(w, r, h.renderer, redirectMeals, "meal", mealID,
		func(id int64) (store.Meal, error) { return h.queries.GetMealByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.renderer.Render(w, r, "meals/meal_details", render.TemplateData{
		Title: meal.Name,
		User:  middleware.GetUser(r),
		Data:  meal,
	}); err != nil {
		logAndInternalError(w, "failed to render meal details page", "error", err)
	}
}

// EditForm renders the meal edit form pre-filled with current values.
// GET /meals/{mealId}/edit
func (h *MealHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	mealID, ok := parseIDParam(r, "mealId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	meal, ok := requireEntityWithRedirect(w, r, h.renderer, redirectMeals, "meal", mealID,
		func(id int64) (store.Meal, error) { return h.queries.GetMealByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.renderer.Render(w, r, "meals/edit_meal", render.TemplateData{
		Title: "Edit " + meal.Name,
		User:  middleware.GetUser(r),
		Data:  meal,
	}); err != nil {
		logAndInternalError(w, "failed to render edit meal page", "error", err)
	}
}

// Update overwrites every field of a meal from the form. A newly
// uploaded image replaces the stored path, otherwise the existingImage
// form value is kept as-is.
// POST /meals/{mealId}/edit
func (h *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	mealID, ok := parseIDParam(r, "mealId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	editURL := fmt.Sprintf(redirectMealsID, mealID) + "/edit"

	meal, ok := requireEntityWithRedirect(w, r, h.renderer, redirectMeals, "meal", mealID,
		func(id int64) (store.Meal, error) { return h.queries.GetMealByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		flashError(w, r, h.renderer, editURL, "Invalid form data")
		return
	}

	form := parseMealForm(r)
	if form.Name == "" || form.Ingredients == "" || form.Allergens == "" {
		flashError(w, r, h.renderer, editURL, msgMealFieldsRequired)
		return
	}

	imagePath := r.FormValue(FormFieldExistingImage)
	if newPath, uploaded, ok := h.uploadCoverIfPresent(w, r, editURL); !ok {
		return
	} else if uploaded {
		// Remove the replaced image's files once the new one is on disk
		if imagePath != "" && imagePath != newPath {
			if err := h.mediaService.DeleteByImagePath(imagePath); err != nil {
				slog.Error("failed to remove replaced image", "error", err, "path", imagePath)
			}
		}
		imagePath = newPath
	}

	if err := h.queries.UpdateMeal(r.Context(), store.UpdateMealParams{
		Name:        form.Name,
		Ingredients: form.Ingredients,
		Allergens:   form.Allergens,
		SpiceLevel:  form.SpiceLevel,
		MealImage:   imagePath,
		Category:    form.Category,
		Cuisine:     form.Cuisine,
		DishType:    form.DishType,
		ID:          meal.ID,
	}); err != nil {
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, editURL, msgMealExists)
			return
		}
		logAndInternalError(w, "failed to update meal", "error", err, "meal_id", meal.ID)
		return
	}

	userID := middleware.GetUserIDPtr(r)
	slog.Info("meal updated", "meal_id", meal.ID, "name", form.Name)
	_ = h.eventService.LogMealEvent(r.Context(), model.EventLevelInfo, "Meal updated",
		userID, clientIP(r), middleware.GetRequestPath(r.Context()),
		map[string]any{"meal_id": meal.ID, "name": form.Name})

	flashSuccess(w, r, h.renderer, redirectMeals, "Meal updated")
}

// Delete removes a meal. Comments cascade at the schema level; image
// files are removed from disk afterwards.
// POST /meals/{mealId}/delete
func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	mealID, ok := parseIDParam(r, "mealId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	meal, ok := requireEntityWithRedirect(w, r, h.renderer, redirectMeals, "meal", mealID,
		func(id int64) (store.Meal, error) { return h.queries.GetMealByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteMeal(r.Context(), meal.ID); err != nil {
		logAndInternalError(w, "failed to delete meal", "error", err, "meal_id", meal.ID)
		return
	}

	if meal.MealImage != "" {
		if err := h.mediaService.DeleteByImagePath(meal.MealImage); err != nil {
			slog.Error("failed to remove meal image files", "error", err, "path", meal.MealImage)
		}
	}

	userID := middleware.GetUserIDPtr(r)
	slog.Info("meal deleted", "meal_id", meal.ID, "name", meal.Name)
	_ = h.eventService.LogMealEvent(r.Context(), model.EventLevelInfo, "Meal deleted",
		userID, clientIP(r), middleware.GetRequestPath(r.Context()),
		map[string]any{"meal_id": meal.ID, "name": meal.Name})

	flashSuccess(w, r, h.renderer, redirectMeals, "Meal deleted")
}

// uploadCover processes the cover image field on create. Returns the
// stored public path, or "" when no file was submitted. A processing
// failure flashes an error and aborts the request.
func (h *MealHandler) uploadCover(w http.ResponseWriter, r *http.Request, redirectURL string) (string, bool) {
	path, _, ok := h.uploadCoverIfPresent(w, r, redirectURL)
	return path, ok
}

// uploadCoverIfPresent is uploadCover with an explicit "a file was
// uploaded" signal, which Update needs to know whether to replace the
// existing path.
func (h *MealHandler) uploadCoverIfPresent(w http.ResponseWriter, r *http.Request, redirectURL string) (string, bool, bool) {
	file, header, err := r.FormFile(FormFieldCoverImage)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", false, true
		}
		flashError(w, r, h.renderer, redirectURL, "Could not read the uploaded image.")
		return "", false, false
	}
	defer func() { _ = file.Close() }()

	result, err := h.mediaService.UploadCoverImage(file, header)
	if err != nil {
		slog.Error("cover image upload failed", "error", err, "filename", header.Filename)
		flashError(w, r, h.renderer, redirectURL, "Image upload failed: "+err.Error())
		return "", false, false
	}

	return result.ImagePath, true, true
}
