package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/kafe-cerita-bot/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService mengelola akun admin dashboard
type UserService struct {
	db *gorm.DB
}

// NewUserService membuat instance baru UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser membuat user baru dengan password ter-hash bcrypt
func (s *UserService) CreateUser(name, email, password, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if name == "" {
		name = email
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return &user, nil
}

// EnsureAdmin membuat admin bila email tersebut belum terdaftar
func (s *UserService) EnsureAdmin(email, password string) (*models.User, bool, error) {
	var existing models.User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	user, err := s.CreateUser("Admin", email, password, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// Authenticate mencocokkan email dan password
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUser mendapatkan user berdasarkan ID
func (s *UserService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
