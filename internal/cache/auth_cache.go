package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"giftbox_back_end/internal/database"
)

const (
	AuthCacheTTL = 15 * time.Minute // Cache les vérifications de mot de passe pendant 15 min
)

// GetPasswordHashFromCache vérifie si la combinaison email/mot de passe
// a déjà été validée récemment. Évite de refaire Argon2 à chaque login.
func GetPasswordHashFromCache(email, password string) bool {
	if database.Redis == nil {
		return false
	}
	ctx := context.Background()

	passwordHash := sha256.Sum256([]byte(password))
	cacheKey := "auth:" + email + ":" + hex.EncodeToString(passwordHash[:])

	result, err := database.Redis.Get(ctx, cacheKey).Result()
	return err == nil && result == "valid"
}

// SetPasswordHashInCache met en cache une vérification de mot de passe réussie
func SetPasswordHashInCache(email, password string) {
	if database.Redis == nil {
		return
	}
	ctx := context.Background()

	passwordHash := sha256.Sum256([]byte(password))
	cacheKey := "auth:" + email + ":" + hex.EncodeToString(passwordHash[:])

	database.Redis.Set(ctx, cacheKey, "valid", AuthCacheTTL)
}

// InvalidateAuthCache invalide le cache d'authentification pour un email
func InvalidateAuthCache(email string) {
	if database.Redis == nil {
		return
	}
	ctx := context.Background()

	pattern := "auth:" + email + ":*"
	iter := database.Redis.Scan(ctx, 0, pattern, 100).Iterator()

	for iter.Next(ctx) {
		database.Redis.Del(ctx, iter.Val())
	}
}

// BlacklistToken révoque un JWT (logout) jusqu'à son expiration naturelle.
func BlacklistToken(token string, ttl time.Duration) {
	if database.Redis == nil {
		return
	}
	sum := sha256.Sum256([]byte(token))
	database.Redis.Set(context.Background(), "jwt_blacklist:"+hex.EncodeToString(sum[:]), "revoked", ttl)
}

// IsTokenBlacklisted indique si un JWT a été révoqué.
func IsTokenBlacklisted(token string) bool {
	if database.Redis == nil {
		return false
	}
	sum := sha256.Sum256([]byte(token))
	result, err := database.Redis.Get(context.Background(), "jwt_blacklist:"+hex.EncodeToString(sum[:])).Result()
	return err == nil && result == "revoked"
}
