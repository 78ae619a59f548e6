package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"ipamd/internal/api/dto"
	"ipamd/internal/auth"
	"ipamd/internal/database"
	"ipamd/internal/domain"
	"ipamd/internal/support"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

func registerUser(w http.ResponseWriter, r *http.Request) {
	var creds dto.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !auth.IsValidEmail(creds.Email) {
		writeError(w, "Invalid email address", http.StatusBadRequest)
		return
	}
	if len(creds.Password) < 8 {
		writeError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	if _, err := database.GetUserByEmail(creds.Email); err == nil {
		writeError(w, "Email already registered", http.StatusConflict)
		return
	}

	hash, err := support.HashPassword(creds.Password)
	if err != nil {
		log.Error("Failed to hash password", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// the first account becomes the administrator
	role := "user"
	if database.CountUsers() == 0 {
		role = "admin"
	}

	user := domain.User{Email: creds.Email, Password: hash, Role: role}
	if err := database.CreateUser(&user); err != nil {
		log.Error("Failed to create user", "email", creds.Email, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": token, "role": user.Role})
}

func loginUser(w http.ResponseWriter, r *http.Request) {
	var creds dto.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := database.GetUserByEmail(creds.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		log.Error("Failed to look up user", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !support.CheckPassword(user.Password, creds.Password) {
		writeError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Role)
	if err != nil {
		log.Error("Failed to generate token", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token, "role": user.Role})
}

func checkLogin(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserIDFromRequest(r)
	if err != nil {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user := database.GetUserFromId(userID)
	if user.ID == 0 {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": user.ID, "email": user.Email, "role": user.Role})
}
