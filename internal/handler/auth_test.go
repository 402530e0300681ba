package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkhalife/sufra/internal/model"
	"github.com/dkhalife/sufra/internal/store"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{30 * time.Second, "30 seconds"},
		{1 * time.Minute, "1 minute"},
		{5 * time.Minute, "5 minutes"},
		{1 * time.Hour, "1 hour"},
		{2 * time.Hour, "2 hours"},
		{90 * time.Second, "1 minute"},
		{90 * time.Minute, "1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatDuration(tt.duration)
			if got != tt.want {
				t.Errorf("formatDuration(%v) = %q; want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.5:4312",
			want:       "203.0.113.5:4312",
		},
		{
			name:       "x-real-ip wins",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "forwarded-for first hop",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			want:       "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q; want %q", got, tt.want)
			}
		})
	}
}

// newAuthRouter wires an AuthHandler behind session middleware the way
// main.go does, so session operations inside handlers work.
func newAuthRouter(t *testing.T, db *storeDB) http.Handler {
	t.Helper()

	sm := testSessionManager(t)
	renderer := testRenderer(t, sm)
	h := NewAuthHandler(db.DB, renderer, sm, nil)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Get(RouteSignup, h.SignupForm)
	r.Post(RouteSignup, h.Signup)
	r.Get(RouteLogin, h.LoginForm)
	r.Post(RouteLogin, h.Login)
	r.Post(RouteLogout, h.Logout)
	r.Get(RouteProfile, h.Profile)
	return r
}

func postForm(t *testing.T, router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignupForm_Renders(t *testing.T) {
	db := newTestStoreDB(t)
	router := newAuthRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, RouteSignup, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Create an account") {
		t.Error("signup page should contain the form heading")
	}
}

func TestSignup_MissingFields(t *testing.T) {
	db := newTestStoreDB(t)
	router := newAuthRouter(t, db)

	w := postForm(t, router, RouteSignup, url.Values{
		"username": {"sami"},
		"email":    {""},
		"password": {"longenough"},
	})

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), msgFieldsMandatory) {
		t.Errorf("body should contain %q", msgFieldsMandatory)
	}
}

func TestSignup_ShortPassword(t *testing.T) {
	db := newTestStoreDB(t)
	router := newAuthRouter(t, db)

	w := postForm(t, router, RouteSignup, url.Values{
		"username": {"sami"},
		"email":    {"sami@example.com"},
		"password": {"short"},
	})

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), msgPasswordTooShort) {
		t.Errorf("body should contain %q", msgPasswordTooShort)
	}

	if _, err := db.queries.GetUserByUsername(context.Background(), "sami"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByUsername err = %v; want sql.ErrNoRows", err)
	}
}

func TestSignup_Success(t *testing.T) {
	db := newTestStoreDB(t)
	router := newAuthRouter(t, db)

	w := postForm(t, router, RouteSignup, url.Values{
		"username": {"sami"},
		"email":    {"Sami@Example.com"},
		"password": {"longenough"},
	})

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != redirectMenu {
		t.Errorf("Location = %q; want %q", loc, redirectMenu)
	}

	user, err := db.queries.GetUserByUsername(context.Background(), "sami")
	if err != nil {
		t.Fatalf("user was not created: %v", err)
	}
	if user.Email != "sami@example.com" {
		t.Errorf("Email = %q; want lowercased", user.Email)
	}
	if user.Role != model.RoleCustomer {
		t.Errorf("Role = %q; want %q", user.Role, model.RoleCustomer)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	db := newTestStoreDB(t)
	createTestUser(t, db.DB, testUser{Username: "sami", Email: "sami@example.com"})
	router := newAuthRouter(t, db)

	w := postForm(t, router, RouteSignup, url.Values{
		"username": {"sami"},
		"email":    {"other@example.com"},
		"password": {"longenough"},
	})

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), msgUsernameTaken) {
		t.Errorf("body should contain %q", msgUsernameTaken)
	}
}

func TestLogin_Success(t *testing.T) {
	db := newTestStoreDB(t)
	user := createTestUser(t, db.DB, testUser{Username: "sami", Email: "sami@example.com", Password: "password123"})
	router := newAuthRouter(t, db)

	w := postForm(t, router, RouteLogin, url.Values{
		"email":    {"sami@example.com"},
		"password": {"password123"},
	})

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != redirectMenu {
		t.Errorf("Location = %q; want %q", loc, redirectMenu)
	}

	updated, err := db.queries.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !updated.LastLoginAt.Valid {
		t.Error("LastLoginAt should be set after login")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := newTestStoreDB(t)
	createTestUser(t, db.DB, testUser{Username: "sami", Email: "sami@example.com", Password: "password123"})
	router := newAuthRouter(t, db)

	w := postForm(t, router, RouteLogin, url.Values{
		"email":    {"sami@example.com"},
		"password": {"wrongpassword"},
	})

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != redirectLogin {
		t.Errorf("Location = %q; want %q", loc, redirectLogin)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	db := newTestStoreDB(t)
	router := newAuthRouter(t, db)

	w := postForm(t, router, RouteLogin, url.Values{
		"email":    {"nobody@example.com"},
		"password": {"password123"},
	})

	// Same redirect as a wrong password so callers cannot enumerate accounts
	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != redirectLogin {
		t.Errorf("Location = %q; want %q", loc, redirectLogin)
	}
}

func TestLogout_Redirects(t *testing.T) {
	db := newTestStoreDB(t)
	router := newAuthRouter(t, db)

	w := postForm(t, router, RouteLogout, url.Values{})

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != redirectRoot {
		t.Errorf("Location = %q; want %q", loc, redirectRoot)
	}
}

func TestProfile_NotFound(t *testing.T) {
	db := newTestStoreDB(t)
	router := newAuthRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/profile/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestProfile_ShowsComments(t *testing.T) {
	db := newTestStoreDB(t)
	user := createTestUser(t, db.DB, testUser{Username: "sami", Email: "sami@example.com"})
	meal := createTestMeal(t, db.DB, "Shakshuka")

	if _, err := db.queries.CreateComment(context.Background(), store.CreateCommentParams{
		DishID:   meal.ID,
		AuthorID: user.ID,
		Content:  "Perfect brunch",
	}); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	router := newAuthRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/profile/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "Perfect brunch") {
		t.Error("profile should list the user's comments")
	}
	if !strings.Contains(body, "Shakshuka") {
		t.Error("profile comments should resolve the dish name")
	}
}
