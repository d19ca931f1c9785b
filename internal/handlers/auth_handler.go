package handlers

import (
	"errors"
	"log"
	"net/http"

	"hanzidrill/internal/service"
	"hanzidrill/internal/validation"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and logs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var ve validation.ValidationError
		switch {
		case errors.As(err, &ve):
			respondWithError(w, http.StatusBadRequest, ve.Error(), "", nil)
		case errors.Is(err, service.ErrUsernameTaken):
			respondWithError(w, http.StatusConflict, "Username already taken", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error registering user", err)
		}
		return
	}
	log.Printf("Registered user %d (%s)", user.ID, user.Username)

	h.issueToken(w, r, req.Username, req.Password, http.StatusCreated)
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.issueToken(w, r, req.Username, req.Password, http.StatusOK)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request, username, password string, status int) {
	token, expires, user, err := h.authService.Login(r.Context(), username, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondWithError(w, http.StatusUnauthorized, "Invalid username or password", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error logging in", err)
		return
	}

	respondJSON(w, status, AuthResponse{
		Token:     token,
		ExpiresAt: expires,
		UserID:    user.ID,
		Username:  user.Username,
	})
}

// Me returns the authenticated learner
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	respondJSON(w, http.StatusOK, UserView{ID: user.ID, Username: user.Username, Email: user.Email})
}
