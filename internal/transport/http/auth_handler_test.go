package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/service"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *stubUserRepo) addUser(email, password, role string) *domain.User {
	hash, _ := util.HashPassword(password)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Role:         role,
		PasswordHash: &hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.mu.Lock()
	r.users[user.ID] = user
	r.mu.Unlock()
	return user
}

func (r *stubUserRepo) Create(ctx context.Context, email, passwordHash string, firstName, lastName *string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         domain.RoleUser,
		PasswordHash: &passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) UpsertGoogleUser(ctx context.Context, email string, firstName, lastName *string) (*domain.User, error) {
	return r.Create(ctx, email, "", firstName, lastName)
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = &passwordHash
	return nil
}

func (r *stubUserRepo) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.ResetToken = &token
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *stubUserRepo) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
			u.PasswordHash = &passwordHash
			u.ResetToken = nil
			u.ResetTokenExpiresAt = nil
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newAuthTestServer(t *testing.T) (*stubUserRepo, *service.AuthService, http.Handler) {
	t.Helper()
	repo := newStubUserRepo()
	auth := service.NewAuthService(repo, util.NewJWTManager("test-secret", time.Hour), nil, "", "", time.Hour)
	e := NewRouter([]string{"*"})
	RegisterAuth(e, auth)
	return repo, auth, e
}

func doJSON(t *testing.T, handler http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, payload
}

func TestRegisterEndpoint(t *testing.T) {
	_, _, handler := newAuthTestServer(t)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/auth/register",
		`{"email":"alice@example.com","password":"Secret123!"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if payload["success"] != true {
		t.Fatalf("expected success=true, got %v", payload)
	}
	data, ok := payload["data"].(map[string]any)
	if !ok || data["email"] != "alice@example.com" {
		t.Fatalf("unexpected data payload: %v", payload)
	}
	if _, leaked := data["password_hash"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}

	rec, payload = doJSON(t, handler, http.MethodPost, "/api/auth/register",
		`{"email":"bob@example.com","password":"123"}`, "")
	if rec.Code != http.StatusBadRequest || payload["success"] != false {
		t.Fatalf("expected 400 for weak password, got %d %v", rec.Code, payload)
	}
}

func TestLoginEndpoint(t *testing.T) {
	repo, _, handler := newAuthTestServer(t)
	repo.addUser("alice@example.com", "Secret123!", domain.RoleUser)

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"Secret123!"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if payload["success"] != true {
		t.Fatalf("expected success=true, got %v", payload)
	}
	if token, _ := payload["token"].(string); token == "" {
		t.Fatalf("expected a token in the response")
	}
}

func TestLoginFailureBody(t *testing.T) {
	repo, _, handler := newAuthTestServer(t)
	repo.addUser("alice@example.com", "Secret123!", domain.RoleUser)

	for name, body := range map[string]string{
		"wrong password": `{"email":"alice@example.com","password":"WrongPass!"}`,
		"unknown email":  `{"email":"nobody@example.com","password":"Secret123!"}`,
	} {
		rec, payload := doJSON(t, handler, http.MethodPost, "/api/auth/login", body, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rec.Code)
		}
		if payload["success"] != false || payload["message"] != "Identifiants invalides" {
			t.Errorf("%s: unexpected body %v", name, payload)
		}
	}
}

func TestProfileRoundTrip(t *testing.T) {
	repo, _, handler := newAuthTestServer(t)
	repo.addUser("alice@example.com", "Secret123!", domain.RoleUser)

	_, payload := doJSON(t, handler, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"Secret123!"}`, "")
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatalf("login did not return a token")
	}

	rec, payload := doJSON(t, handler, http.MethodGet, "/api/auth/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, ok := payload["data"].(map[string]any)
	if !ok || data["email"] != "alice@example.com" {
		t.Fatalf("unexpected profile payload: %v", payload)
	}
}

func TestProfileRejectsBadTokens(t *testing.T) {
	_, _, handler := newAuthTestServer(t)

	rec, _ := doJSON(t, handler, http.MethodGet, "/api/auth/profile", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec, _ = doJSON(t, handler, http.MethodGet, "/api/auth/profile", "", "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}

	otherManager := util.NewJWTManager("other-secret", time.Hour)
	token, _, err := otherManager.Generate(uuid.New(), "x@example.com", domain.RoleUser)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	rec, _ = doJSON(t, handler, http.MethodGet, "/api/auth/profile", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign signature, got %d", rec.Code)
	}
}

func TestResetPasswordRequestEndpoint(t *testing.T) {
	repo, _, handler := newAuthTestServer(t)
	user := repo.addUser("alice@example.com", "Secret123!", domain.RoleUser)

	rec, _ := doJSON(t, handler, http.MethodPost, "/api/auth/reset-password-request", `{"email":""}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing email, got %d", rec.Code)
	}

	recKnown, payloadKnown := doJSON(t, handler, http.MethodPost, "/api/auth/reset-password-request",
		`{"email":"alice@example.com"}`, "")
	recUnknown, payloadUnknown := doJSON(t, handler, http.MethodPost, "/api/auth/reset-password-request",
		`{"email":"nobody@example.com"}`, "")

	if recKnown.Code != http.StatusOK || recUnknown.Code != http.StatusOK {
		t.Fatalf("expected 200 for both, got %d and %d", recKnown.Code, recUnknown.Code)
	}
	if payloadKnown["message"] != payloadUnknown["message"] {
		t.Fatalf("known and unknown email responses must match: %v vs %v", payloadKnown, payloadUnknown)
	}

	repo.mu.Lock()
	tokenSet := repo.users[user.ID].ResetToken != nil
	repo.mu.Unlock()
	if !tokenSet {
		t.Fatalf("expected a reset token stored for the known account")
	}
}

func TestResetPasswordFlowEndpoint(t *testing.T) {
	repo, _, handler := newAuthTestServer(t)
	user := repo.addUser("alice@example.com", "Secret123!", domain.RoleUser)

	token := "aaaabbbbccccdddd"
	expiry := time.Now().Add(time.Hour)
	if err := repo.SetResetToken(context.Background(), user.ID, token, expiry); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/auth/verify-reset-token",
		`{"token":"`+token+`"}`, "")
	if rec.Code != http.StatusOK || payload["email"] != "alice@example.com" {
		t.Fatalf("unexpected verify response %d %v", rec.Code, payload)
	}

	rec, _ = doJSON(t, handler, http.MethodPost, "/api/auth/reset-password",
		`{"token":"`+token+`","new_password":"NewSecret456!"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Token is burned.
	rec, payload = doJSON(t, handler, http.MethodPost, "/api/auth/reset-password",
		`{"token":"`+token+`","new_password":"Another789!"}`, "")
	if rec.Code != http.StatusBadRequest || payload["success"] != false {
		t.Fatalf("expected 400 after consumption, got %d %v", rec.Code, payload)
	}

	rec, _ = doJSON(t, handler, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"NewSecret456!"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login with the new password, got %d", rec.Code)
	}
}
