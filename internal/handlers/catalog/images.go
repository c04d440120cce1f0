package catalog

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"giftbox_back_end/internal/services"
	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// UploadProductImage pousse une image vers MinIO puis ajoute son URL
// au produit.
func UploadProductImage(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	if _, err := store.Products.ByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image manquant"})
		return
	}

	objectName := fmt.Sprintf("products/%s/%d%s", id, time.Now().UnixNano(), filepath.Ext(file.Filename))
	url, err := services.UploadFile(objectName, file)
	if err != nil {
		log.Printf("❌ Erreur upload MinIO: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'upload de l'image"})
		return
	}

	if err := store.Products.AddImageURL(id, url); err != nil {
		log.Printf("❌ Erreur ajout URL image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement de l'image"})
		return
	}

	log.Printf("✅ Image ajoutée au produit %s: %s", id, url)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// GetProductImages liste les URLs d'images d'un produit.
func GetProductImages(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"images": product.ImageURLs})
}
