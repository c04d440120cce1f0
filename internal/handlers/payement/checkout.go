package payement

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/payment"
	"giftbox_back_end/internal/service"
	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Checkout transforme le panier en commande. L'ordre est créé chez la
// passerelle AVANT toute écriture locale : si la passerelle refuse, rien
// n'est persisté et le panier reste intact.
func Checkout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	var input struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse de livraison requise"})
		return
	}

	view, _, err := service.LoadCart(userID.(string))
	if err != nil {
		log.Printf("❌ Erreur chargement panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement du panier"})
		return
	}
	if len(view.Lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le panier est vide"})
		return
	}

	amountPaise := int64(math.Round(view.Total * 100))
	receipt := fmt.Sprintf("order_%d", time.Now().Unix())

	gatewayOrderID, err := payment.Gateway.CreateOrder(amountPaise, "INR", receipt)
	if err != nil {
		log.Printf("❌ Création d'ordre passerelle échouée: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "La passerelle de paiement est indisponible"})
		return
	}

	order := models.Order{
		ID:              gocql.TimeUUID(),
		UserID:          userID.(string),
		OrderDate:       time.Now(),
		TotalAmount:     view.Total,
		PaymentStatus:   models.PaymentStatusPending,
		GatewayOrderID:  gatewayOrderID,
		ShippingAddress: input.Address,
	}
	items := models.ItemsFromCart(order.ID, view.Lines)

	if err := store.Orders.Create(&order, items); err != nil {
		log.Printf("❌ Erreur persistance commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement de la commande"})
		return
	}
	if err := store.Cart.Clear(userID.(string)); err != nil {
		log.Printf("⚠️ Panier non vidé après checkout: %v", err)
	}

	log.Printf("💳 Commande %s créée (passerelle %s, %d paise)", order.ID, gatewayOrderID, amountPaise)
	c.JSON(http.StatusOK, gin.H{
		"order_id":         order.ID,
		"gateway_order_id": gatewayOrderID,
		"amount":           amountPaise,
		"currency":         "INR",
		"key_id":           payment.Gateway.KeyID,
	})
}
