package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/store"
	"giftbox_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

type ctxKey string

const providerKey ctxKey = "provider"

// ProviderNameFromRequest retrouve le provider OAuth d'une requête :
// paramètre de query, champ de formulaire, puis la valeur de contexte
// posée par BeginAuth/CallbackAuth depuis le paramètre d'URL. Branchée
// sur gothic.GetProviderName au démarrage.
func ProviderNameFromRequest(req *http.Request) (string, error) {
	if provider := req.URL.Query().Get("provider"); provider != "" {
		return provider, nil
	}
	if provider := req.FormValue("provider"); provider != "" {
		return provider, nil
	}
	if provider, ok := req.Context().Value(providerKey).(string); ok && provider != "" {
		return provider, nil
	}
	return "", errors.New("provider not found")
}

// BeginAuth démarre le flux OAuth du provider demandé (google, facebook).
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), providerKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flux OAuth : l'utilisateur est retrouvé par
// email ou créé à la volée, puis reçoit un JWT comme un login classique.
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), providerKey, provider),
	)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if gothUser.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le provider n'a pas fourni d'email"})
		return
	}

	account, err := findOrCreateOAuthUser(gothUser)
	if err != nil {
		log.Printf("❌ Erreur création utilisateur OAuth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du compte"})
		return
	}

	token, err := utils.GenerateJWT(*account)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	log.Printf("✅ Connexion OAuth %s: %s", provider, account.Email)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": account})
}

func findOrCreateOAuthUser(gothUser goth.User) (*models.User, error) {
	email := strings.ToLower(gothUser.Email)

	if existing, err := store.Users.ByEmail(email); err == nil {
		return existing, nil
	}

	username := gothUser.Name
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	now := time.Now()
	newUser := models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		Provider:  gothUser.Provider,
		Role:      "customer",
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if err := store.Users.Create(&newUser); err != nil {
		return nil, err
	}

	log.Printf("✅ Nouveau compte OAuth (%s): %s", gothUser.Provider, email)
	return &newUser, nil
}
