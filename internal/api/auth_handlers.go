package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"serwer-cytatow/internal/auth"
	"serwer-cytatow/internal/database"
	"strings"
)

var (
	errWrongPassword = errors.New("current password is incorrect")
	errUserNotFound  = errors.New("user not found")
)

type RegisterRequest struct {
	Username string `json:"username" example:"jan_kowalski"`
	Email    string `json:"email" example:"jan@example.com"`
	Password string `json:"password" example:"password123"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"jan@example.com"`
	Password string `json:"password" example:"password123"`
}

type AuthResponse struct {
	Token    string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...."`
	UserID   int64  `json:"userId" example:"1"`
	Username string `json:"username" example:"jan_kowalski"`
	Email    string `json:"email" example:"jan@example.com"`
}

// @Summary      Register a new user
// @Description  Creates a user account and returns a signed session token for it.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "New account details"
// @Success      201              {object}  AuthResponse
// @Failure      400              {object}  MessageResponse "Missing fields or user already exists"
// @Failure      500              {object}  MessageResponse
// @Router       /auth/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	existing, err := s.store.GetUserByUsernameOrEmail(r.Context(), req.Username, req.Email)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if existing != nil {
		respondWithError(w, http.StatusBadRequest, "User already exists")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	user, err := s.store.CreateUser(r.Context(), database.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		// The pre-check above races with concurrent registrations; the
		// unique constraint is what actually guarantees the invariant.
		if errors.Is(err, database.ErrDuplicateUser) {
			respondWithError(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Printf("ERROR: failed to create user: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := auth.GenerateJWT(user, s.config.JWT.Secret, s.config.JWT.TokenTTL)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusCreated, AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// @Summary      Log a user in
// @Description  Verifies email and password and returns a signed session token. Bad credentials always produce the same 400, whether or not the email exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login credentials"
// @Success      200           {object}  AuthResponse
// @Failure      400           {object}  MessageResponse "Invalid credentials"
// @Failure      500           {object}  MessageResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondWithError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user, s.config.JWT.Secret, s.config.JWT.TokenTTL)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

type UpdateProfileRequest struct {
	Username string `json:"username" example:"jan_kowalski"`
	Email    string `json:"email" example:"jan.nowy@example.com"`
}

// @Summary      Update profile
// @Description  Changes the username and/or email of the authenticated user and returns the updated identity with a fresh token. Fields left empty keep their current value.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        updateProfileRequest  body      UpdateProfileRequest  true  "New profile fields"
// @Success      200                   {object}  AuthResponse
// @Failure      400                   {object}  MessageResponse "Username or email already in use"
// @Failure      401                   {object}  MessageResponse
// @Failure      404                   {object}  MessageResponse "User not found"
// @Failure      500                   {object}  MessageResponse
// @Router       /auth/profile [put]
func (s *Server) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	current, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if current == nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	newUsername := strings.TrimSpace(req.Username)
	if newUsername == "" {
		newUsername = current.Username
	}
	newEmail := strings.TrimSpace(req.Email)
	if newEmail == "" {
		newEmail = current.Email
	}

	user, err := s.store.UpdateUserProfile(r.Context(), database.UpdateUserProfileParams{
		ID:       claims.UserID,
		Username: newUsername,
		Email:    newEmail,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateUser) {
			respondWithError(w, http.StatusBadRequest, "Username or email already in use")
			return
		}
		log.Printf("ERROR: failed to update profile for user %d: %v", claims.UserID, err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if user == nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	token, err := auth.GenerateJWT(user, s.config.JWT.Secret, s.config.JWT.TokenTTL)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" example:"password123"`
	NewPassword     string `json:"newPassword" example:"password456"`
}

// @Summary      Change password
// @Description  Re-hashes and stores a new password after verifying the current one.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        updatePasswordRequest  body      UpdatePasswordRequest  true  "Current and new password"
// @Success      200                    {object}  MessageResponse
// @Failure      400                    {object}  MessageResponse "Current password is incorrect"
// @Failure      401                    {object}  MessageResponse
// @Failure      500                    {object}  MessageResponse
// @Router       /auth/password [put]
func (s *Server) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.NewPassword == "" {
		respondWithError(w, http.StatusBadRequest, "New password is required")
		return
	}

	// Verify-then-write runs in one transaction so a concurrent change
	// cannot slip in between the check and the update.
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		user, err := q.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return errUserNotFound
		}

		if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
			return errWrongPassword
		}

		newHash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			return err
		}

		return q.UpdateUserPassword(r.Context(), claims.UserID, newHash)
	})

	if txErr != nil {
		switch {
		case errors.Is(txErr, errWrongPassword):
			respondWithError(w, http.StatusBadRequest, "Current password is incorrect")
		case errors.Is(txErr, errUserNotFound):
			respondWithError(w, http.StatusNotFound, "User not found")
		default:
			log.Printf("ERROR: failed to update password for user %d: %v", claims.UserID, txErr)
			respondWithError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}

// @Summary      Get current user info
// @Description  Returns the claims of the presented token.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  auth.AppClaims
// @Failure      401  {object}  MessageResponse
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	respondWithJSON(w, http.StatusOK, claims)
}

// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}
