package catalog

import (
	"log"
	"net/http"
	"strings"

	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GetCategories liste toutes les catégories du catalogue.
func GetCategories(c *gin.Context) {
	categories, err := store.Categories.All()
	if err != nil {
		log.Printf("❌ Erreur chargement catégories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement des catégories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory ajoute une catégorie (admin).
func CreateCategory(c *gin.Context) {
	var input struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{
		ID:          gocql.TimeUUID(),
		Name:        input.Name,
		Slug:        strings.ToLower(strings.ReplaceAll(strings.TrimSpace(input.Name), " ", "-")),
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := store.Categories.Create(&category); err != nil {
		log.Printf("❌ Erreur création catégorie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création de la catégorie"})
		return
	}

	c.JSON(http.StatusCreated, category)
}
