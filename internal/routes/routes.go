package routes

import (
	"giftbox_back_end/internal/handlers/catalog"
	"giftbox_back_end/internal/handlers/payement"
	"giftbox_back_end/internal/handlers/user"
	"giftbox_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// Catalogue public
	api.GET("/products", catalog.GetProducts)
	api.GET("/products/:id", catalog.GetProductByID)
	api.GET("/products/:id/images", catalog.GetProductImages)
	api.GET("/search", catalog.SearchProducts)
	api.GET("/categories", catalog.GetCategories)

	// Authentification
	api.POST("/register", user.Register)
	api.POST("/login", user.Login)
	api.GET("/auth/:provider", user.BeginAuth)
	api.GET("/auth/:provider/callback", user.CallbackAuth)

	// Routes protégées par JWT
	auth := api.Group("/")
	auth.Use(middleware.AuthRequired())
	{
		auth.POST("/logout", user.Logout)
		auth.GET("/account", user.GetAccount)
		auth.PUT("/account", user.UpdateProfile)

		auth.GET("/cart", user.GetCart)
		auth.GET("/cart/ws", user.CartWebSocket)
		auth.POST("/cart/add", user.AddToCart)
		auth.POST("/cart/update", user.UpdateCart)
		auth.DELETE("/cart/clear", user.ClearCart)
		auth.DELETE("/cart/:lineId", user.RemoveFromCart)

		auth.GET("/products/:id/customize", catalog.GetCustomizeProduct)
		auth.POST("/products/:id/customize", catalog.CustomizeProduct)

		auth.GET("/orders", user.GetMyOrders)
		auth.GET("/orders/:id", user.GetOrderByID)
		auth.POST("/checkout", payement.Checkout)
		auth.POST("/payment/success", payement.PaymentSuccess)
	}

	// Administration du catalogue
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.POST("/products", catalog.CreateProduct)
		admin.POST("/products/:id/images", catalog.UploadProductImage)
		admin.POST("/categories", catalog.CreateCategory)
	}
}
