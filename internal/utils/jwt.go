package utils

import (
	"os"
	"time"

	"giftbox_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const TokenLifetime = 72 * time.Hour

// GenerateJWT émet le token de session d'un utilisateur.
func GenerateJWT(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(TokenLifetime).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
