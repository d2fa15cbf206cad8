package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/placementcell/drivetrack/internal/auth"
	"github.com/placementcell/drivetrack/internal/model"
	"github.com/placementcell/drivetrack/internal/service"
)

// AuthHandler exposes signup, signin, and the user read endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

// authResponse is the body returned by signup and signin.
type authResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

// HandleSignup registers a user.
//
// HTTP: POST /api/user/signup → 201 with token and public user,
// 400 on malformed input, 409 on an existing username.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	result, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User created successfully",
		Token:   result.Token,
		User:    result.User.Public(),
	})
}

// HandleSignin authenticates a user.
//
// HTTP: POST /api/user/signin → 200 with token, 400 on malformed input,
// 401 "Not a registered user" / "Password incorrect".
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var in service.SigninInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	result, err := h.auth.Signin(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Welcome user, you are logged in",
		Token:   result.Token,
		User:    result.User.Public(),
	})
}

// HandleMe returns the authenticated user's public record. The user ID
// comes from the token subject the auth gate verified.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "auth_error",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

// HandleListUsers returns every user as a public projection. Unlike the
// legacy service this never serializes password hashes.
//
// HTTP: GET /api/users
func (h *AuthHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
