package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gravadigital/rosterly-api/internal/config"
	"github.com/gravadigital/rosterly-api/internal/logger"
)

// Admin represents an administrator who can assign and unassign workers.
// The admin's id is the actor recorded on every assignment.
type Admin struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(200);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Admin) TableName() string {
	return "admins"
}

// BeforeCreate will set a UUID rather than numeric ID.
func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Claims are the JWT claims issued for an authenticated admin
type Claims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies admin credentials
type Service struct {
	secret   []byte
	lifetime time.Duration
}

// NewService creates an auth service from the application configuration
func NewService(cfg *config.Config) *Service {
	return &Service{
		secret:   []byte(cfg.Auth.JWTSecret),
		lifetime: cfg.Auth.TokenLifetime,
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateToken creates a signed JWT for an admin
func (s *Service) CreateToken(admin *Admin) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret is not configured")
	}

	now := time.Now().UTC()
	claims := &Claims{
		AdminID: admin.ID.String(),
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken verifies a JWT and returns its claims
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// EnsureAdminExists creates the bootstrap admin from configuration when
// no admin account exists yet.
func EnsureAdminExists(db *gorm.DB, cfg *config.Config) error {
	log := logger.Service("auth")

	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	if cfg.Auth.AdminPassword == "" {
		return errors.New("no admin exists and ADMIN_PASSWORD is not set")
	}

	hash, err := HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &Admin{
		ID:           uuid.New(),
		Name:         "Administrator",
		Email:        cfg.Auth.AdminEmail,
		PasswordHash: hash,
	}

	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.Info("Bootstrap admin created", "email", admin.Email)
	return nil
}

// Authenticate verifies a credential pair and returns the admin on success
func Authenticate(db *gorm.DB, email, password string) (*Admin, error) {
	var admin Admin
	if err := db.Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	if !CheckPasswordHash(password, admin.PasswordHash) {
		return nil, errors.New("invalid credentials")
	}

	return &admin, nil
}
