package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arnavshah/roster-api-go/pkg/config"
	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/logging"
)

var jwtAlgorithm = jwt.SigningMethodHS256

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidKey    = errors.New("invalid key format")
	ErrBadSignature  = errors.New("invalid signature")
	ErrRevokedKey    = errors.New("api key revoked")
	ErrBadCredential = errors.New("invalid credentials")
)

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs admin tokens and API keys with the configured secrets
type Service struct {
	jwtSecret []byte
	keySecret []byte
	ttl       time.Duration
	cost      int
	admin     string
	password  string
}

func New(cfg config.AuthConfig) *Service {
	return &Service{
		jwtSecret: []byte(cfg.JWTSecret),
		keySecret: []byte(cfg.APIKeySecret),
		ttl:       cfg.TokenTTL,
		cost:      cfg.BcryptCost,
		admin:     cfg.AdminUsername,
		password:  cfg.AdminPassword,
	}
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (s *Service) CreateToken(username string) (string, error) {
	expirationTime := time.Now().Add(s.ttl)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken verifies a JWT token
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Login checks a master user's password and returns a signed token
func (s *Service) Login(db *gorm.DB, username, password string) (string, error) {
	var user database.MasterUser
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return "", ErrBadCredential
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrBadCredential
	}
	return s.CreateToken(user.Username)
}

// EnsureAdminExists creates the configured admin when no master user exists yet
func (s *Service) EnsureAdminExists(db *gorm.DB) error {
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := s.HashPassword(s.password)
	if err != nil {
		return err
	}

	user := database.MasterUser{
		Username:     s.admin,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	log := logging.New("auth")
	log.Info().Str("username", s.admin).Msg("default admin user created")
	return nil
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func (s *Service) GenerateHMACKey(name string) string {
	return GenerateHMACKey(s.keySecret, name)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its name
func (s *Service) VerifyHMACKey(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 || parts[0] == "" {
		return "", ErrInvalidKey
	}

	expected := GenerateHMACKey(s.keySecret, parts[0])
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return "", ErrBadSignature
	}
	return parts[0], nil
}

// GenerateHMACKey signs name with secret; keygen uses it without a Service
func GenerateHMACKey(secret []byte, name string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(name))
	return name + "." + hex.EncodeToString(h.Sum(nil))
}

// KeyPreview masks all but the ends of a key
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// RecordKeyUse fetches or creates the row for a verified key and stamps its
// last use. A revoked key is rejected.
func RecordKeyUse(db *gorm.DB, key, name string) (*database.APIKey, error) {
	var apiKey database.APIKey
	if err := db.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
		Key:        key,
		Name:       name,
		KeyPreview: KeyPreview(key),
	}).Error; err != nil {
		return nil, err
	}
	if apiKey.RevokedAt != nil {
		return nil, ErrRevokedKey
	}

	now := time.Now()
	apiKey.LastUsed = &now
	if err := db.Model(&apiKey).Update("last_used", now).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}
