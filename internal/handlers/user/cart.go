package user

import (
	"context"
	"log"
	"net/http"

	"giftbox_back_end/internal/database"
	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/service"
	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// notifyCartChanged publie l'événement sur le canal Redis du panier,
// écouté par les websockets ouverts de l'utilisateur (multi-onglets).
func notifyCartChanged(userID, event string) {
	if database.Redis == nil {
		return
	}
	if err := database.Redis.Publish(context.Background(), "cart:"+userID, event).Err(); err != nil {
		log.Printf("⚠️ Publication Redis panier échouée: %v", err)
	}
}

// GetCart retourne le panier résolu (lignes + total).
func GetCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	view, _, err := service.LoadCart(userID.(string))
	if err != nil {
		log.Printf("❌ Erreur chargement panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement du panier"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToCart ajoute un produit du catalogue au panier. Une ligne
// existante pour le même produit voit sa quantité incrémentée.
func AddToCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	productID, err := gocql.ParseUUID(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	if _, err := store.Products.ByID(productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	line, err := store.Cart.AddLine(userID.(string), models.PlainRef(productID), input.Quantity)
	if err != nil {
		log.Printf("❌ Erreur ajout au panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout au panier"})
		return
	}

	notifyCartChanged(userID.(string), "updated")
	c.JSON(http.StatusOK, gin.H{"message": "Produit ajouté au panier", "line": line})
}

// UpdateCart change la quantité d'une ligne. Quantité ≤ 0 = suppression.
func UpdateCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	var input struct {
		LineID   string `json:"line_id" binding:"required"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lineID, err := gocql.ParseUUID(input.LineID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de ligne invalide"})
		return
	}

	if err := store.Cart.UpdateQuantity(userID.(string), lineID, input.Quantity); err != nil {
		log.Printf("❌ Erreur mise à jour panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour du panier"})
		return
	}

	notifyCartChanged(userID.(string), "updated")
	c.JSON(http.StatusOK, gin.H{"message": "Panier mis à jour"})
}

// RemoveFromCart supprime une ligne. Supprimer une ligne déjà absente
// n'est pas une erreur.
func RemoveFromCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	lineID, err := gocql.ParseUUID(c.Param("lineId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de ligne invalide"})
		return
	}

	if err := store.Cart.RemoveLine(userID.(string), lineID); err != nil {
		log.Printf("❌ Erreur suppression ligne panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression de la ligne"})
		return
	}

	notifyCartChanged(userID.(string), "updated")
	c.JSON(http.StatusOK, gin.H{"message": "Ligne supprimée"})
}

// ClearCart vide entièrement le panier.
func ClearCart(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	if err := store.Cart.Clear(userID.(string)); err != nil {
		log.Printf("❌ Erreur vidage panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage du panier"})
		return
	}

	notifyCartChanged(userID.(string), "cleared")
	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
