package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/placementcell/drivetrack/internal/apperror"
	"github.com/placementcell/drivetrack/internal/auth"
	"github.com/placementcell/drivetrack/internal/handler"
	"github.com/placementcell/drivetrack/internal/model"
	"github.com/placementcell/drivetrack/internal/repository"
	"github.com/placementcell/drivetrack/internal/service"
)

// memUserRepo is an in-memory UserRepository keyed by normalized username.
type memUserRepo struct {
	users map[string]*model.User
}

func (m *memUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Username]; ok {
		return apperror.Conflict("Existing user")
	}
	user.ID = primitive.NewObjectID()
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	result := *user
	return &result, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, user := range m.users {
		if user.ID.Hex() == id {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (m *memUserRepo) List(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, user := range m.users {
		result = append(result, *user)
	}
	return result, nil
}

// memDriveRepo is an in-memory DriveRepository whose List applies the same
// predicate semantics the Mongo query does.
type memDriveRepo struct {
	drives map[string]*model.Drive
}

func (m *memDriveRepo) Create(_ context.Context, drive *model.Drive) error {
	drive.ID = primitive.NewObjectID()
	stored := *drive
	m.drives[drive.ID.Hex()] = &stored
	return nil
}

func (m *memDriveRepo) GetByID(_ context.Context, id string) (*model.Drive, error) {
	drive, ok := m.drives[id]
	if !ok {
		return nil, apperror.NotFound("Drive")
	}
	result := *drive
	return &result, nil
}

func (m *memDriveRepo) List(_ context.Context, filter repository.DriveFilter) ([]model.Drive, error) {
	result := []model.Drive{}
	for _, drive := range m.drives {
		if matchesFilter(drive, filter) {
			result = append(result, *drive)
		}
	}
	return result, nil
}

func (m *memDriveRepo) Update(_ context.Context, drive *model.Drive) error {
	if _, ok := m.drives[drive.ID.Hex()]; !ok {
		return apperror.NotFound("Drive")
	}
	stored := *drive
	m.drives[drive.ID.Hex()] = &stored
	return nil
}

func (m *memDriveRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.drives[id]; !ok {
		return apperror.NotFound("Drive")
	}
	delete(m.drives, id)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchesFilter(d *model.Drive, f repository.DriveFilter) bool {
	if f.CompanyName != "" && !containsFold(d.CompanyName, f.CompanyName) {
		return false
	}
	if f.CoodName != "" && !containsFold(d.CoodName, f.CoodName) {
		return false
	}
	if f.PhoneNumber != "" && !containsFold(d.PhoneNumber, f.PhoneNumber) {
		return false
	}
	if f.HRDetail != "" {
		found := false
		for _, hr := range d.HRDetails {
			if containsFold(hr, f.HRDetail) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Status != nil && d.Status != *f.Status {
		return false
	}
	if f.DateCreated != "" && d.DateCreated != f.DateCreated {
		return false
	}
	if f.DateUpdated != "" && d.DateUpdated != f.DateUpdated {
		return false
	}
	if f.TotalParticipated != nil || f.TotalPlaced != nil {
		found := false
		for _, closing := range d.DriveClosingDetails {
			for _, detail := range closing.ClosingDetails {
				participatedOK := f.TotalParticipated == nil || detail.TotalParticipated == *f.TotalParticipated
				placedOK := f.TotalPlaced == nil || detail.TotalPlaced == *f.TotalPlaced
				if participatedOK && placedOK {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// newTestRouter assembles the API route tree over in-memory repositories,
// mirroring the server's wiring.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceWithCost(4)

	authService := service.NewAuthService(&memUserRepo{users: map[string]*model.User{}}, tokens, passwords, logger)
	driveService := service.NewDriveService(&memDriveRepo{drives: map[string]*model.Drive{}}, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	driveHandler := handler.NewDriveHandler(driveService, logger)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Post("/user/signup", authHandler.HandleSignup)
		r.Post("/user/signin", authHandler.HandleSignin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Get("/users", authHandler.HandleListUsers)

			r.Post("/drives", driveHandler.HandleCreate)
			r.Get("/drives", driveHandler.HandleList)
			r.Get("/drives/{id}", driveHandler.HandleGetByID)
			r.Put("/drives/{id}", driveHandler.HandleUpdate)
			r.Delete("/drives/{id}", driveHandler.HandleDelete)
		})
	})
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			buf, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal request body: %v", err)
			}
			reader = bytes.NewReader(buf)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v (body: %s)", err, rr.Body.String())
	}
}

func signupBody() map[string]any {
	return map[string]any{
		"username":    "coordinator@college.edu",
		"password":    "secret1",
		"firstName":   "Asha",
		"lastName":    "Nair",
		"phoneNumber": "9876543210",
		"linkedinId":  "asha-nair",
		"teamName":    "placements",
		"position":    "coordinator",
	}
}

func driveBody() map[string]any {
	return map[string]any{
		"companyName": "Acme Corp",
		"hrDetails":   []string{"priya@acme.example"},
		"coodName":    "Ravi",
		"phoneNumber": "9876543210",
		"status":      1,
		"dateCreated": "2024-01-15",
	}
}

// signupAndSignin registers the default user and returns a valid token.
func signupAndSignin(t *testing.T, router http.Handler) string {
	t.Helper()

	rr := doJSON(t, router, http.MethodPost, "/api/user/signup", "", signupBody())
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rr, &resp)
	if resp.Token == "" {
		t.Fatal("signup returned no token")
	}
	return resp.Token
}

func TestSignupEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/user/signup", "", signupBody())
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeBody(t, rr, &resp)

	if resp.Message != "User created successfully" {
		t.Errorf("message = %q, want %q", resp.Message, "User created successfully")
	}
	if resp.Token == "" {
		t.Error("token missing from signup response")
	}
	if resp.User.Username != "coordinator@college.edu" {
		t.Errorf("username = %q", resp.User.Username)
	}

	// The response never carries the credential, hashed or plain.
	if strings.Contains(rr.Body.String(), "password") {
		t.Error("signup response must not contain a password field")
	}
}

func TestSignupEndpoint_Duplicate(t *testing.T) {
	router := newTestRouter(t)

	if rr := doJSON(t, router, http.MethodPost, "/api/user/signup", "", signupBody()); rr.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", rr.Code)
	}

	rr := doJSON(t, router, http.MethodPost, "/api/user/signup", "", signupBody())
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want %d", rr.Code, http.StatusConflict)
	}

	var resp handler.ErrorResponse
	decodeBody(t, rr, &resp)
	if resp.Message != "Existing user" {
		t.Errorf("message = %q, want %q", resp.Message, "Existing user")
	}
}

func TestSignupEndpoint_BadJSON(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/api/user/signup", "", "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSigninEndpoint(t *testing.T) {
	router := newTestRouter(t)
	signupAndSignin(t, router)

	t.Run("wrong password", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/user/signin", "", map[string]any{
			"username": "coordinator@college.edu",
			"password": "wrong-password",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
		}
		var resp handler.ErrorResponse
		decodeBody(t, rr, &resp)
		if resp.Message != "Password incorrect" {
			t.Errorf("message = %q, want %q", resp.Message, "Password incorrect")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/user/signin", "", map[string]any{
			"username": "ghost@college.edu",
			"password": "secret1",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
		}
		var resp handler.ErrorResponse
		decodeBody(t, rr, &resp)
		if resp.Message != "Not a registered user" {
			t.Errorf("message = %q, want %q", resp.Message, "Not a registered user")
		}
	})

	t.Run("correct credentials", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/user/signin", "", map[string]any{
			"username": "coordinator@college.edu",
			"password": "secret1",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
		}
		var resp struct {
			Message string `json:"message"`
			Token   string `json:"token"`
		}
		decodeBody(t, rr, &resp)
		if resp.Message != "Welcome user, you are logged in" {
			t.Errorf("message = %q, want %q", resp.Message, "Welcome user, you are logged in")
		}
		if resp.Token == "" {
			t.Error("signin returned no token")
		}
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/drives"},
		{http.MethodGet, "/api/drives"},
		{http.MethodGet, "/api/drives/abc"},
		{http.MethodPut, "/api/drives/abc"},
		{http.MethodDelete, "/api/drives/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := doJSON(t, router, tt.method, tt.path, "", nil)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestMeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router)

	rr := doJSON(t, router, http.MethodGet, "/api/me", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var me struct {
		Username string `json:"username"`
		TeamName string `json:"teamName"`
	}
	decodeBody(t, rr, &me)
	if me.Username != "coordinator@college.edu" {
		t.Errorf("username = %q", me.Username)
	}
	if me.TeamName != "placements" {
		t.Errorf("teamName = %q", me.TeamName)
	}
}

func TestListUsersEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router)

	rr := doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var users []map[string]any
	decodeBody(t, rr, &users)
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	if _, leaked := users[0]["password"]; leaked {
		t.Error("user listing must not contain a password field")
	}
}

func TestDriveCRUDFlow(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router)

	// Create.
	rr := doJSON(t, router, http.MethodPost, "/api/drives", token, driveBody())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var created model.Drive
	decodeBody(t, rr, &created)
	if created.CompanyName != "acme corp" {
		t.Errorf("companyName = %q, want %q", created.CompanyName, "acme corp")
	}
	id := created.ID.Hex()

	// Read back by id.
	rr = doJSON(t, router, http.MethodGet, "/api/drives/"+id, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d, body: %s", rr.Code, rr.Body.String())
	}

	// Filtered list finds it by substring.
	rr = doJSON(t, router, http.MethodGet, "/api/drives?companyName=acme", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var listed []model.Drive
	decodeBody(t, rr, &listed)
	if len(listed) != 1 {
		t.Fatalf("filtered list returned %d drives, want 1", len(listed))
	}

	// A non-matching filter excludes it.
	rr = doJSON(t, router, http.MethodGet, "/api/drives?companyName=globex", token, nil)
	decodeBody(t, rr, &listed)
	if len(listed) != 0 {
		t.Fatalf("non-matching filter returned %d drives, want 0", len(listed))
	}

	// Partial update.
	rr = doJSON(t, router, http.MethodPut, "/api/drives/"+id, token, map[string]any{
		"status":      2,
		"dateUpdated": "2024-02-01",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var updated model.Drive
	decodeBody(t, rr, &updated)
	if updated.Status != 2 {
		t.Errorf("status = %d, want 2", updated.Status)
	}
	if updated.CompanyName != "acme corp" {
		t.Errorf("companyName changed to %q without being patched", updated.CompanyName)
	}

	// Status filter now matches the new value only.
	rr = doJSON(t, router, http.MethodGet, "/api/drives?status=2", token, nil)
	decodeBody(t, rr, &listed)
	if len(listed) != 1 {
		t.Fatalf("status=2 filter returned %d drives, want 1", len(listed))
	}
	rr = doJSON(t, router, http.MethodGet, "/api/drives?status=1", token, nil)
	decodeBody(t, rr, &listed)
	if len(listed) != 0 {
		t.Fatalf("status=1 filter returned %d drives, want 0", len(listed))
	}

	// Delete.
	rr = doJSON(t, router, http.MethodDelete, "/api/drives/"+id, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var deleted map[string]string
	decodeBody(t, rr, &deleted)
	if deleted["message"] != "Drive deleted successfully" {
		t.Errorf("message = %q, want %q", deleted["message"], "Drive deleted successfully")
	}

	// Gone afterwards.
	rr = doJSON(t, router, http.MethodGet, "/api/drives/"+id, token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	var notFound handler.ErrorResponse
	decodeBody(t, rr, &notFound)
	if notFound.Message != "Drive not found" {
		t.Errorf("message = %q, want %q", notFound.Message, "Drive not found")
	}
}

func TestDriveEndpoint_UnknownID(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router)

	missing := primitive.NewObjectID().Hex()

	tests := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]any{"status": 2}},
		{http.MethodDelete, nil},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rr := doJSON(t, router, tt.method, "/api/drives/"+missing, token, tt.body)
			if rr.Code != http.StatusNotFound {
				t.Errorf("status = %d, want %d, body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
			}
		})
	}
}

func TestDriveEndpoint_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router)

	t.Run("missing status on create", func(t *testing.T) {
		body := driveBody()
		delete(body, "status")
		rr := doJSON(t, router, http.MethodPost, "/api/drives", token, body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("non-numeric filter param", func(t *testing.T) {
		for _, param := range []string{"status", "totalParticipated", "totalPlaced"} {
			rr := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/drives?%s=abc", param), token, nil)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("%s=abc status = %d, want %d", param, rr.Code, http.StatusBadRequest)
			}
			var resp handler.ErrorResponse
			decodeBody(t, rr, &resp)
			want := fmt.Sprintf("%s must be a number", param)
			if resp.Message != want {
				t.Errorf("message = %q, want %q", resp.Message, want)
			}
		}
	})

	t.Run("bad JSON on create", func(t *testing.T) {
		rr := doJSON(t, router, http.MethodPost, "/api/drives", token, "{not json")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestDriveFilter_NestedTotals(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndSignin(t, router)

	closed := driveBody()
	closed["driveClosingDetails"] = []map[string]any{{
		"closingMessage": "wrapped up",
		"closingStatus":  2,
		"closingDetails": []map[string]any{{
			"totalParticipated": 120,
			"totalPlaced":       30,
		}},
	}}
	if rr := doJSON(t, router, http.MethodPost, "/api/drives", token, closed); rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", rr.Code, rr.Body.String())
	}

	open := driveBody()
	open["companyName"] = "Globex"
	if rr := doJSON(t, router, http.MethodPost, "/api/drives", token, open); rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", rr.Code, rr.Body.String())
	}

	var listed []model.Drive

	rr := doJSON(t, router, http.MethodGet, "/api/drives?totalPlaced=30", token, nil)
	decodeBody(t, rr, &listed)
	if len(listed) != 1 || listed[0].CompanyName != "acme corp" {
		t.Fatalf("totalPlaced=30 returned %d drives, want the closed one", len(listed))
	}

	// Both totals must hold on the same nested element.
	rr = doJSON(t, router, http.MethodGet, "/api/drives?totalParticipated=120&totalPlaced=30", token, nil)
	decodeBody(t, rr, &listed)
	if len(listed) != 1 {
		t.Fatalf("combined totals returned %d drives, want 1", len(listed))
	}

	rr = doJSON(t, router, http.MethodGet, "/api/drives?totalParticipated=120&totalPlaced=99", token, nil)
	decodeBody(t, rr, &listed)
	if len(listed) != 0 {
		t.Fatalf("mismatched totals returned %d drives, want 0", len(listed))
	}
}
