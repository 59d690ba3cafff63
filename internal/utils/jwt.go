package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL срок жизни выданного токена
const TokenTTL = 24 * time.Hour

// JWTService отвечает за создание и валидацию JWT токенов
type JWTService struct {
	secretKey string
}

// TokenClaims содержит разобранные данные токена
type TokenClaims struct {
	UserID    uuid.UUID
	Role      string
	JTI       string
	ExpiresAt time.Time
}

// NewJWTService создаёт новый экземпляр JWTService
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: secretKey}
}

// GenerateToken создаёт JWT токен с ролью и уникальным jti для отзыва
func (s *JWTService) GenerateToken(userID uuid.UUID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"jti":     uuid.New().String(),
		"exp":     time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ParseToken проверяет подпись и срок действия токена и возвращает его данные
func (s *JWTService) ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("недействительный токен")
	}

	rawID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("токен не содержит user_id")
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, errors.New("токен содержит некорректный user_id")
	}

	result := &TokenClaims{UserID: userID}

	if role, ok := claims["role"].(string); ok {
		result.Role = role
	}
	if jti, ok := claims["jti"].(string); ok {
		result.JTI = jti
	}
	if exp, ok := claims["exp"].(float64); ok {
		result.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return result, nil
}
