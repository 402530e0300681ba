package handler

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dkhalife/sufra/internal/auth"
	"github.com/dkhalife/sufra/internal/model"
	"github.com/dkhalife/sufra/internal/render"
	"github.com/dkhalife/sufra/internal/store"
	"github.com/dkhalife/sufra/web"
)

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		PRAGMA foreign_keys = ON;

		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('admin', 'moderator', 'customer')),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		);
		CREATE INDEX idx_users_email ON users(email);
		CREATE INDEX idx_users_username ON users(username);

		CREATE TABLE meals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			ingredients TEXT NOT NULL,
			allergens TEXT NOT NULL,
			spice_level TEXT NOT NULL DEFAULT '',
			meal_image TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			cuisine TEXT NOT NULL DEFAULT '',
			dish_type TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dish_id INTEGER NOT NULL,
			author_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (dish_id) REFERENCES meals(id) ON DELETE CASCADE,
			FOREIGN KEY (author_id) REFERENCES users(id)
		);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL DEFAULT 'info',
			category TEXT NOT NULL DEFAULT 'system',
			message TEXT NOT NULL,
			user_id INTEGER,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
		);

		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// storeDB bundles the raw connection with a Queries handle for tests
// that assert directly against the database.
type storeDB struct {
	*sql.DB
	queries *store.Queries
}

func newTestStoreDB(t *testing.T) *storeDB {
	t.Helper()
	db := testDB(t)
	return &storeDB{DB: db, queries: store.New(db)}
}

// testSessionManager creates a session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer creates a renderer backed by the embedded templates.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("failed to sub templates FS: %v", err)
	}

	r, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}
	return r
}

// testUser describes a user to seed into the test database.
type testUser struct {
	Username string
	Email    string
	Role     model.Role
	Password string
}

// createTestUser creates a test user in the database with a real
// argon2id hash so login flows can verify against it.
func createTestUser(t *testing.T, db *sql.DB, user testUser) store.User {
	t.Helper()

	if user.Password == "" {
		user.Password = "password123"
	}
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	created, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: hash,
		Role:         user.Role,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return created
}

// createTestMeal inserts a meal with sensible defaults.
func createTestMeal(t *testing.T, db *sql.DB, name string) store.Meal {
	t.Helper()

	meal, err := store.New(db).CreateMeal(context.Background(), store.CreateMealParams{
		Name:        name,
		Ingredients: "chickpeas, tahini, lemon",
		Allergens:   "sesame",
	})
	if err != nil {
		t.Fatalf("failed to create test meal: %v", err)
	}
	return meal
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
