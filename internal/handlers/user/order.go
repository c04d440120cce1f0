package user

import (
	"log"
	"net/http"

	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GetMyOrders retourne l'historique de commandes de l'utilisateur,
// lignes incluses.
func GetMyOrders(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	orders, err := store.Orders.ByUser(userID.(string))
	if err != nil {
		log.Printf("❌ Erreur chargement commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement des commandes"})
		return
	}

	out := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		items, err := store.Orders.Items(order.ID)
		if err != nil {
			log.Printf("⚠️ Lignes introuvables pour la commande %s: %v", order.ID, err)
			items = nil
		}
		out = append(out, gin.H{"order": order, "items": items})
	}

	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// GetOrderByID retourne une commande si et seulement si elle appartient
// à l'utilisateur connecté.
func GetOrderByID(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := store.Orders.ByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if order.UserID != userID.(string) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	items, err := store.Orders.Items(order.ID)
	if err != nil {
		log.Printf("❌ Erreur chargement lignes commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement de la commande"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}
