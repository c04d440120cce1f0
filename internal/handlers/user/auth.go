package user

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"giftbox_back_end/internal/cache"
	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/store"
	"giftbox_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Register crée un compte classique (email + mot de passe Argon2id).
func Register(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Address  string `json:"address"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		log.Printf("❌ Erreur hash mot de passe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	now := time.Now()
	newUser := models.User{
		ID:        uuid.New().String(),
		Username:  input.Username,
		Email:     strings.ToLower(input.Email),
		Password:  hash,
		Address:   input.Address,
		Phone:     input.Phone,
		Provider:  "local",
		Role:      "customer",
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	if err := store.Users.Create(&newUser); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email ou nom d'utilisateur déjà utilisé"})
			return
		}
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du compte"})
		return
	}

	token, err := utils.GenerateJWT(newUser)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	log.Printf("✅ Nouveau compte: %s (%s)", newUser.Username, newUser.Email)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": newUser})
}

// Login authentifie par email/mot de passe. Les vérifications Argon2
// réussies sont mises en cache Redis pour alléger les logins répétés.
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(input.Email)
	account, err := store.Users.ByEmail(email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	if !cache.GetPasswordHashFromCache(email, input.Password) {
		valid, err := utils.VerifyPassword(input.Password, account.Password)
		if err != nil || !valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
			return
		}
		cache.SetPasswordHashInCache(email, input.Password)
	}

	token, err := utils.GenerateJWT(*account)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	log.Printf("✅ Connexion: %s", account.Email)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": account})
}

// Logout révoque le token courant jusqu'à son expiration naturelle.
func Logout(c *gin.Context) {
	token, exists := c.Get("token")
	if exists {
		cache.BlacklistToken(token.(string), utils.TokenLifetime)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// GetAccount retourne le profil et l'historique de commandes (avec le
// nombre d'articles par commande).
func GetAccount(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	account, err := store.Users.ByID(userID.(string))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	orders, err := store.Orders.ByUser(userID.(string))
	if err != nil {
		log.Printf("❌ Erreur chargement commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement des commandes"})
		return
	}

	for i := range orders {
		items, err := store.Orders.Items(orders[i].ID)
		if err != nil {
			continue
		}
		count := 0
		for _, item := range items {
			count += item.Quantity
		}
		orders[i].ItemCount = count
	}

	c.JSON(http.StatusOK, gin.H{"user": account, "orders": orders})
}

// UpdateProfile met à jour l'adresse et le téléphone du compte.
func UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	var input struct {
		Username string `json:"username"`
		Address  string `json:"address"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := store.Users.ByID(userID.(string))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if input.Username != "" {
		account.Username = input.Username
	}
	if input.Address != "" {
		account.Address = input.Address
	}
	if input.Phone != "" {
		account.Phone = input.Phone
	}
	now := time.Now()
	account.UpdatedAt = &now

	if err := store.Users.Update(account); err != nil {
		log.Printf("❌ Erreur mise à jour profil: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour du profil"})
		return
	}

	log.Printf("✅ Profil mis à jour: %s", account.Email)
	c.JSON(http.StatusOK, gin.H{"user": account})
}
