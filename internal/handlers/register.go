package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/manthanm991/Task-Management/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService}
}

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignupResponse struct {
	Message string     `json:"message"`
	User    SignupUser `json:"user"`
}

type SignupUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (h *RegisterHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	fieldErrs := map[string]string{}
	if strings.TrimSpace(req.Username) == "" {
		fieldErrs["username"] = "Username is required."
	}
	if req.Password == "" {
		fieldErrs["password"] = "Password is required."
	}
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
		return
	}

	user, err := h.registerService.RegisterUser(h.db, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists."})
			return
		}

		log.Printf("❌ Signup error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to create user",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{
		Message: "User created successfully",
		User: SignupUser{
			ID:       user.ID.String(),
			Username: user.Username,
		},
	})
}
