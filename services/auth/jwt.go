package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"iap-backoffice/models"
)

const AccessTokenDuration = 12 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// Admin is the single operator account the backoffice accepts.
type Admin struct {
	Username     string
	Email        string
	PasswordHash string // hex sha256
}

type JWTService struct {
	secretKey []byte
	issuer    string
	admin     Admin
	now       func() time.Time
}

type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string, admin Admin) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		admin:     admin,
		now:       time.Now,
	}
}

func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (j *JWTService) Authenticate(username, password string) (*models.AuthResponse, error) {
	if j.admin.Username == "" || j.admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(j.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(j.admin.PasswordHash)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	user := models.AdminUser{Username: j.admin.Username, Email: j.admin.Email}
	token, expiresAt, err := j.GenerateToken(user, AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (j *JWTService) GenerateToken(user models.AdminUser, duration time.Duration) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(duration)
	claims := Claims{
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (j *JWTService) ValidateToken(tokenString string) (*models.AdminUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(j.issuer), jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &models.AdminUser{
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}
