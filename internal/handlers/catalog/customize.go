package catalog

import (
	"log"
	"net/http"

	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Supplément appliqué à toute personnalisation, quel que soit le produit.
const customizationSurcharge = 100.0

// GetCustomizeProduct vérifie qu'un produit est personnalisable et
// retourne la base de travail du configurateur.
func GetCustomizeProduct(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	product, err := store.Products.ByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if !product.Customizable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ce produit n'est pas personnalisable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":          product,
		"surcharge":        customizationSurcharge,
		"customized_price": product.Price + customizationSurcharge,
	})
}

// CustomizeProduct crée un produit personnalisé (immuable) au prix de
// base + supplément, puis l'ajoute au panier de l'utilisateur.
func CustomizeProduct(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists || userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
		return
	}

	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		CustomizationDetails string  `json:"customization_details" binding:"required"`
		ImageURL             string  `json:"image_url"`
		Length               float64 `json:"length"`
		Width                float64 `json:"width"`
		Height               float64 `json:"height"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := store.Products.ByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if !product.Customizable {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ce produit n'est pas personnalisable"})
		return
	}

	custom := models.CustomProduct{
		ID:                   gocql.TimeUUID(),
		BaseProductID:        product.ID,
		UserID:               userID.(string),
		CustomizationDetails: input.CustomizationDetails,
		Length:               input.Length,
		Width:                input.Width,
		Height:               input.Height,
		Price:                product.Price + customizationSurcharge,
		ImageURL:             input.ImageURL,
	}
	if err := store.Customs.Create(&custom); err != nil {
		log.Printf("❌ Erreur création produit personnalisé: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du produit personnalisé"})
		return
	}

	line, err := store.Cart.AddLine(userID.(string), models.CustomRef(custom.ID), 1)
	if err != nil {
		log.Printf("❌ Erreur ajout au panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout au panier"})
		return
	}

	log.Printf("✅ Produit personnalisé %s créé (base %s) et ajouté au panier de %s", custom.ID, product.ID, userID)
	c.JSON(http.StatusCreated, gin.H{
		"custom_product": custom,
		"cart_line":      line,
	})
}
