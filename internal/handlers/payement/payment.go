package payement

import (
	"log"
	"net/http"

	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/payment"
	"giftbox_back_end/internal/shipping"
	"giftbox_back_end/internal/store"
	"giftbox_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// PaymentSuccess est le callback du widget de paiement. La signature est
// vérifiée côté serveur : sans elle, la commande reste en attente. Le
// paiement validé déclenche l'expédition (best-effort) puis l'e-mail de
// confirmation avec facture PDF, en tâche de fond.
func PaymentSuccess(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	var input struct {
		GatewayOrderID string `json:"gateway_order_id" binding:"required"`
		PaymentID      string `json:"payment_id" binding:"required"`
		Signature      string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !payment.Gateway.VerifySignature(input.GatewayOrderID, input.PaymentID, input.Signature) {
		log.Printf("⚠️ Signature de paiement invalide pour %s", input.GatewayOrderID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature de paiement invalide"})
		return
	}

	order, err := store.Orders.ByGatewayOrderID(input.GatewayOrderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if order.UserID != userID.(string) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	if err := store.Orders.MarkPaid(order.ID, input.PaymentID); err != nil {
		log.Printf("❌ Erreur passage en payé: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour de la commande"})
		return
	}
	order.PaymentStatus = models.PaymentStatusPaid
	order.PaymentID = input.PaymentID
	log.Printf("✅ Paiement confirmé pour la commande %s (paiement %s)", order.ID, input.PaymentID)

	items, err := store.Orders.Items(order.ID)
	if err != nil {
		log.Printf("⚠️ Lignes introuvables pour la commande %s: %v", order.ID, err)
		items = nil
	}

	account, err := store.Users.ByID(order.UserID)
	if err != nil {
		log.Printf("⚠️ Utilisateur introuvable pour la commande %s: %v", order.ID, err)
	}

	// L'expédition ne conditionne jamais la réponse : une commande payée
	// mais non expédiée est rattrapable, un paiement perdu ne l'est pas.
	shipmentID := ""
	if account != nil && shipping.Courier != nil {
		shipmentID, err = shipping.Courier.BookShipment(order, items, account)
		if err != nil {
			log.Printf("⚠️ Réservation d'expédition échouée pour %s: %v", order.ID, err)
		} else if err := store.Orders.SetShipmentID(order.ID, shipmentID); err != nil {
			log.Printf("⚠️ Shipment ID non persisté pour %s: %v", order.ID, err)
		} else {
			order.ShipmentID = shipmentID
		}
	}

	if account != nil {
		go sendOrderConfirmation(*order, items, account.Email)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Paiement confirmé",
		"order_id":    order.ID,
		"shipment_id": shipmentID,
	})
}

// sendOrderConfirmation génère la facture PDF et envoie l'e-mail de
// confirmation. Tout échec est simplement journalisé.
func sendOrderConfirmation(order models.Order, items []models.OrderItem, email string) {
	pdf, err := utils.GenerateInvoicePDF(order, items, email)
	if err != nil {
		log.Printf("⚠️ Génération de la facture PDF échouée pour %s: %v", order.ID, err)
		pdf = nil
	}

	html := utils.GenerateOrderConfirmationHTML(order, items)
	if err := utils.SendConfirmationEmail(email, "Confirmation de votre commande", html, pdf); err != nil {
		log.Printf("⚠️ E-mail de confirmation non envoyé pour %s: %v", order.ID, err)
	}
}
