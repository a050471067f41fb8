package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/manthanm991/Task-Management/internal/handlers"
	"github.com/manthanm991/Task-Management/internal/models"
	"github.com/manthanm991/Task-Management/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type MockAuthService struct {
	validPassword string
	validRefresh  string
	revoked       []string
	user          models.User
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{
		validPassword: "s3cret-pass",
		validRefresh:  uuid.Must(uuid.NewV4()).String(),
		user:          models.User{ID: uuid.Must(uuid.NewV4()), Username: "alice"},
	}
}

func (m *MockAuthService) LoginUser(db *gorm.DB, username, password string) (*models.User, error) {
	if username != m.user.Username || password != m.validPassword {
		return nil, services.ErrInvalidCredentials
	}
	return &m.user, nil
}

func (m *MockAuthService) GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error) {
	return "access-token", m.validRefresh, nil
}

func (m *MockAuthService) RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error) {
	if refreshToken != m.validRefresh {
		return "", "", 0, services.ErrInvalidCredentials
	}
	m.validRefresh = uuid.Must(uuid.NewV4()).String()
	return "new-access-token", m.validRefresh, 3600, nil
}

func (m *MockAuthService) RevokeRefreshToken(db *gorm.DB, refreshToken string) error {
	m.revoked = append(m.revoked, refreshToken)
	return nil
}

func setupAuthRouter(mockService *MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authHandler := handlers.NewAuthHandler(nil, mockService)
	refreshHandler := handlers.NewRefreshHandler(nil, mockService)
	logoutHandler := handlers.NewLogoutHandler(nil, mockService)

	router := gin.New()
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/refresh", refreshHandler.Refresh)
	router.POST("/auth/logout", logoutHandler.Logout)
	return router
}

func TestLogin(t *testing.T) {
	mockService := NewMockAuthService()
	router := setupAuthRouter(mockService)

	w := doJSON(router, "POST", "/auth/login", map[string]string{
		"username": "alice",
		"password": "s3cret-pass",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var response handlers.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.AccessToken != "access-token" {
		t.Errorf("Unexpected access token: %q", response.AccessToken)
	}
	if response.TokenType != "Bearer" {
		t.Errorf("Expected Bearer token type, got %q", response.TokenType)
	}
	if response.ExpiresIn != 3600 {
		t.Errorf("Expected expires_in 3600, got %d", response.ExpiresIn)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := setupAuthRouter(NewMockAuthService())

	w := doJSON(router, "POST", "/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["error"] != "invalid_credentials" {
		t.Errorf("Unexpected error: %q", response["error"])
	}
}

func TestLoginMissingFields(t *testing.T) {
	router := setupAuthRouter(NewMockAuthService())

	w := doJSON(router, "POST", "/auth/login", map[string]string{
		"username": "alice",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRefresh(t *testing.T) {
	mockService := NewMockAuthService()
	router := setupAuthRouter(mockService)

	oldRefresh := mockService.validRefresh
	w := doJSON(router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": oldRefresh,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var response handlers.LoginResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.RefreshToken == oldRefresh {
		t.Error("Refresh must rotate the refresh token")
	}
	if response.AccessToken != "new-access-token" {
		t.Errorf("Unexpected access token: %q", response.AccessToken)
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	router := setupAuthRouter(NewMockAuthService())

	w := doJSON(router, "POST", "/auth/refresh", map[string]string{
		"refresh_token": uuid.Must(uuid.NewV4()).String(),
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestLogout(t *testing.T) {
	mockService := NewMockAuthService()
	router := setupAuthRouter(mockService)

	w := doJSON(router, "POST", "/auth/logout", map[string]string{
		"refresh_token": mockService.validRefresh,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if len(mockService.revoked) != 1 {
		t.Errorf("Expected exactly one revoked token, got %d", len(mockService.revoked))
	}
}
