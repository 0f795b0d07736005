package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/andriyanb/artikel-be/internal/auth"
	"github.com/andriyanb/artikel-be/internal/http/respond"
	"github.com/andriyanb/artikel-be/internal/models"
	"github.com/andriyanb/artikel-be/internal/models/dto"
	"github.com/andriyanb/artikel-be/internal/storage"
)

// AuthHandler owns the register/login/logout endpoints.
type AuthHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
	logger *zap.SugaredLogger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, logger: logger}
}

// Routes attaches the auth endpoints to the router.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Username == "" || req.Phone == "" || req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username, phone, email, and password are required")
		return
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		respond.Error(w, http.StatusBadRequest, "role must be admin or user")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		PasswordHash: string(passwordHash),
	}
	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "username or email already taken")
		default:
			h.logger.Errorw("create user", "username", req.Username, "err", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, "User created successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.store.FindByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Errorw("fetch user", "username", req.Username, "err", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		h.logger.Errorw("generate token", "user_id", user.ID, "err", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	redirectTo := "/"
	if user.IsAdmin() {
		redirectTo = "/dashboard-admin"
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, RedirectTo: redirectTo})
}

// handleLogout acknowledges without server-side invalidation. Tokens are
// self-contained and expire on their own; there is no revocation list.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "Logged out successfully", nil)
}
