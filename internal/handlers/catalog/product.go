package catalog

import (
	"log"
	"net/http"

	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/service"
	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Limites d'affichage de la page d'accueil.
const (
	featuredLimit     = 6
	customizableLimit = 4
)

// GetProducts retourne la vitrine : produits mis en avant, ou produits
// personnalisables si ?customizable=1.
func GetProducts(c *gin.Context) {
	if c.Query("customizable") == "1" {
		products, err := store.Products.Customizable(customizableLimit)
		if err != nil {
			log.Printf("❌ Erreur chargement produits personnalisables: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement des produits"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
		return
	}

	products, err := store.Products.Featured(featuredLimit)
	if err != nil {
		log.Printf("❌ Erreur chargement produits: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement des produits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProductByID retourne la fiche d'un produit.
func GetProductByID(c *gin.Context) {
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
	c.JSON(http.StatusOK, product)
}

// CreateProduct ajoute un produit au catalogue (admin) et l'indexe
// dans Elasticsearch.
func CreateProduct(c *gin.Context) {
	var input struct {
		Name         string   `json:"name" binding:"required"`
		Description  string   `json:"description"`
		Price        float64  `json:"price" binding:"required"`
		Stock        int      `json:"stock"`
		Category     string   `json:"category"`
		ImageURLs    []string `json:"image_urls"`
		Customizable bool     `json:"customizable"`
		Length       float64  `json:"length"`
		Width        float64  `json:"width"`
		Height       float64  `json:"height"`
		Weight       float64  `json:"weight"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le prix doit être positif"})
		return
	}

	product := models.Product{
		ID:           gocql.TimeUUID(),
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		Stock:        input.Stock,
		Category:     input.Category,
		ImageURLs:    input.ImageURLs,
		Customizable: input.Customizable,
		Length:       input.Length,
		Width:        input.Width,
		Height:       input.Height,
		Weight:       input.Weight,
	}
	if err := store.Products.Create(&product); err != nil {
		log.Printf("❌ Erreur création produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création du produit"})
		return
	}

	go service.IndexProduct(product)

	log.Printf("✅ Produit créé: %s (%s)", product.Name, product.ID)
	c.JSON(http.StatusCreated, product)
}

// SearchProducts interroge Elasticsearch ; si le cluster est absent on
// retombe sur un scan du store.
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	category := c.Query("category")

	results, err := service.SearchProducts(query, category)
	if err != nil {
		log.Printf("⚠️ Recherche Elastic indisponible (%v), repli sur le store", err)
		results, err = store.Products.Search(query, category)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
