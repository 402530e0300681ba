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
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/dkhalife/sufra/internal/auth"
	"github.com/dkhalife/sufra/internal/middleware"
	"github.com/dkhalife/sufra/internal/model"
	"github.com/dkhalife/sufra/internal/render"
	"github.com/dkhalife/sufra/internal/service"
	"github.com/dkhalife/sufra/internal/store"
)

// SessionKeyUserID is the session key for storing the authenticated user ID.
const SessionKeyUserID = "user_id"

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 8

// AuthHandler handles signup, login, logout and profile routes.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// SignupForm renders the signup page. The Anonymous middleware has
// already redirected logged-in users to the menu.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "auth/signup", render.TemplateData{
		Title: "Sign up",
	}); err != nil {
		logAndInternalError(w, "failed to render signup page", "error", err)
	}
}

// Signup handles the signup form submission. On success the new
// customer is logged in immediately and sent to the menu.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectSignup) {
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	form := map[string]string{"username": username, "email": email}

	if username == "" || email == "" || password == "" {
		h.renderSignupError(w, r, form, msgFieldsMandatory)
		return
	}
	if len(password) < MinPasswordLength {
		h.renderSignupError(w, r, form, msgPasswordTooShort)
		return
	}

	// Pre-check the username so the common collision gets a friendly
	// message without burning an argon2 hash. The UNIQUE constraint
	// still backs this up against races.
	if _, err := h.queries.GetUserByUsername(r.Context(), username); err == nil {
		h.renderSignupError(w, r, form, msgUsernameTaken)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "database error during signup", "error", err)
		return
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleCustomer,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				h.renderSignupError(w, r, form, msgEmailTaken)
			} else {
				h.renderSignupError(w, r, form, msgUsernameTaken)
			}
			return
		}
		logAndInternalError(w, "failed to create user", "error", err)
		return
	}

	// Regenerate the session ID before elevating it to authenticated.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("user signed up", "user_id", user.ID, "username", user.Username)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User signed up",
		&user.ID, clientIP(r), middleware.GetRequestPath(r.Context()), map[string]any{"username": user.Username})

	flashSuccess(w, r, h.renderer, redirectMenu, msgWelcome)
}

// renderSignupError re-renders the signup form with an error message
// and the submitted values so the visitor does not retype them.
func (h *AuthHandler) renderSignupError(w http.ResponseWriter, r *http.Request, form map[string]string, message string) {
	if err := h.renderer.Render(w, r, "auth/signup", render.TemplateData{
		Title:     "Sign up",
		Flash:     message,
		FlashType: "error",
		Form:      form,
	}); err != nil {
		logAndInternalError(w, "failed to render signup page", "error", err)
	}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Log in",
	}); err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, msgInvalidCredentials)
		return
	}

	ip := clientIP(r)

	// Check if account is locked
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login attempt on locked account",
				nil, ip, middleware.GetRequestPath(r.Context()), map[string]any{"email": email})
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "email", email)
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login failed: user not found",
				nil, ip, middleware.GetRequestPath(r.Context()), map[string]any{"email": email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record failed attempt even for non-existent users to prevent enumeration
		h.recordFailure(email)
		flashError(w, r, h.renderer, redirectLogin, msgInvalidCredentials)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		flashError(w, r, h.renderer, redirectLogin, msgInvalidCredentials)
		return
	}
	if !valid {
		slog.Debug("invalid password attempt", "email", email)
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login failed: invalid password",
			&user.ID, ip, middleware.GetRequestPath(r.Context()), map[string]any{"email": email})
		h.recordFailure(email)
		flashError(w, r, h.renderer, redirectLogin, msgInvalidCredentials)
		return
	}

	// Clear failed attempts on successful login
	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Re-hash if the stored hash uses outdated parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			} else {
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{
		LastLoginAt: time.Now().UTC(),
		ID:          user.ID,
	}); err != nil {
		// Don't block login on this error
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged in",
		&user.ID, ip, middleware.GetRequestPath(r.Context()), map[string]any{"email": user.Email})

	flashSuccess(w, r, h.renderer, redirectMenu, "Welcome back, "+user.Username+"!")
}

// recordFailure counts a failed login towards the account lockout.
func (h *AuthHandler) recordFailure(email string) {
	if h.loginProtection != nil {
		h.loginProtection.RecordFailedAttempt(email)
	}
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Grab the user ID for logging before destroying the session
	userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID)

	if userID > 0 {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out",
			&userID, clientIP(r), middleware.GetRequestPath(r.Context()), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectRoot, msgLoggedOut, "info")
}

// profileData is the payload for the profile template.
type profileData struct {
	Account  store.User
	Comments []store.AuthorComment
}

// Profile renders a user's profile with their comment history.
// GET /profile/{userId}
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "userId")
	if !ok {
		http.NotFound(w, r)
		return
	}

	account, ok := requireEntityWithError(w, "user", userID,
		func(id int64) (store.User, error) { return h.queries.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}

	comments, err := h.queries.ListCommentsByAuthor(r.Context(), account.ID)
	if err != nil {
		logAndInternalError(w, "failed to list user comments", "error", err, "user_id", account.ID)
		return
	}

	if err := h.renderer.Render(w, r, "user/profile", render.TemplateData{
		Title: account.Username,
		User:  middleware.GetUser(r),
		Data:  profileData{Account: account, Comments: comments},
	}); err != nil {
		logAndInternalError(w, "failed to render profile page", "error", err)
	}
}

// clientIP extracts the client address for event logging, trusting
// proxy headers the same way the rate limiter does.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	return r.RemoteAddr
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
