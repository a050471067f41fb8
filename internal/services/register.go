package services

import (
	"errors"
	"strings"

	"github.com/manthanm991/Task-Management/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUsernameTaken = errors.New("username already exists")

type RegisterService interface {
	RegisterUser(db *gorm.DB, username, password string) (*models.User, error)
}

type RegisterServiceImpl struct{}

func NewRegisterService() *RegisterServiceImpl {
	return &RegisterServiceImpl{}
}

// RegisterUser creates a user with a bcrypt-hashed password. The username
// check runs before the insert; the unique index on users.username remains
// the backstop for two signups racing past the check, and a constraint
// violation is reported the same way as a failed pre-check.
func (s *RegisterServiceImpl) RegisterUser(db *gorm.DB, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: username,
		Password: string(hashedPassword),
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return &user, nil
}
