package routes

import (
	"net/http"
	"slices"
	"time"

	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/config"
	adminhandlers "techshop_back_end/internal/handlers/admin"
	"techshop_back_end/internal/handlers/payment"
	"techshop_back_end/internal/handlers/product"
	"techshop_back_end/internal/handlers/user"
	"techshop_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// Dependencies are the handlers and shared services the routes need.
type Dependencies struct {
	Config   *config.Config
	Cache    *cache.Cache
	Sessions sessions.Store

	Catalog  *product.Catalog
	Cart     *user.Cart
	Account  *user.Account
	Checkout *payment.Checkout
	Admin    *adminhandlers.Handler
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Dependencies) {
	cfg := d.Config
	secret := []byte(cfg.JWTSecret)

	r.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Stripe signs the raw body; keep it out of the API rate limit.
	r.POST("/api/payments/webhook", d.Checkout.Webhook)

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit(d.Cache, cfg.APIMaxRequests))

	// Catalog
	api.GET("/products", d.Catalog.ListProducts)
	api.GET("/products/featured", d.Catalog.Featured)
	api.GET("/products/search", d.Catalog.Search)
	api.GET("/products/:id", d.Catalog.GetProduct)
	api.GET("/products/:id/reviews", d.Catalog.ListReviews)
	api.POST("/products/:id/reviews", d.Catalog.SubmitReview)
	api.GET("/categories", d.Catalog.ListCategories)
	api.GET("/banners", d.Catalog.ListBanners)
	api.GET("/settings", d.Catalog.Settings)

	// Cart and checkout: keyed by the browser session, or the customer when signed in
	shopper := api.Group("")
	shopper.Use(middleware.CartSession(d.Sessions), middleware.OptionalAuth(secret, d.Cache))
	{
		carts := shopper.Group("/cart")
		carts.Use(middleware.CartRateLimit(d.Cache, cfg.CartMaxRequests))
		carts.GET("", d.Cart.Get)
		carts.POST("/items", d.Cart.AddItem)
		carts.PUT("/items/:id", d.Cart.UpdateItem)
		carts.DELETE("/items/:id", d.Cart.RemoveItem)
		carts.DELETE("", d.Cart.Clear)
		carts.POST("/sync", d.Cart.Sync)
		carts.GET("/ws", d.Cart.WebSocket)

		shopper.POST("/checkout", d.Checkout.Submit)
		shopper.POST("/orders/:number/payment-intent", d.Checkout.PaymentIntent)
	}

	// Customer accounts
	auth := api.Group("/auth")
	{
		auth.POST("/register", d.Account.Register)
		auth.POST("/login", middleware.LoginRateLimit(d.Cache), d.Account.Login)
		auth.POST("/logout", middleware.AuthRequired(secret, d.Cache), d.Account.Logout)
		auth.GET("/session", middleware.AuthRequired(secret, d.Cache), d.Account.Session)
	}

	profile := api.Group("/profile")
	profile.Use(middleware.AuthRequired(secret, d.Cache))
	{
		profile.GET("", d.Account.GetProfile)
		profile.PUT("", d.Account.SaveProfile)
		profile.GET("/orders", d.Account.Orders)
		profile.GET("/orders/:id", d.Account.Order)
	}

	// Back-office
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(secret, d.Cache), middleware.RequireAdmin)
	{
		admin.GET("/stats", d.Admin.Stats)

		admin.GET("/products", d.Admin.ListProducts)
		admin.POST("/products", d.Admin.CreateProduct)
		admin.PUT("/products/:id", d.Admin.UpdateProduct)
		admin.DELETE("/products/:id", d.Admin.DeleteProduct)

		admin.GET("/categories", d.Admin.ListCategories)
		admin.POST("/categories", d.Admin.SaveCategory)
		admin.PUT("/categories/:id", d.Admin.SaveCategory)
		admin.DELETE("/categories/:id", d.Admin.DeleteCategory)

		admin.GET("/banners", d.Admin.ListBanners)
		admin.POST("/banners", d.Admin.SaveBanner)
		admin.PUT("/banners/:id", d.Admin.SaveBanner)
		admin.DELETE("/banners/:id", d.Admin.DeleteBanner)

		admin.GET("/orders", d.Admin.ListOrders)
		admin.GET("/orders/incomplete", d.Admin.IncompleteOrders)
		admin.GET("/orders/:id", d.Admin.GetOrder)
		admin.PUT("/orders/:id/status", d.Admin.UpdateOrderStatus)
		admin.PUT("/orders/:id/payment", d.Admin.UpdatePaymentStatus)
		admin.PUT("/orders/:id/tracking", d.Admin.UpdateTracking)

		admin.GET("/reviews", d.Admin.ListReviews)
		admin.PUT("/reviews/:id/approval", d.Admin.SetReviewApproval)
		admin.DELETE("/reviews/:id", d.Admin.DeleteReview)

		admin.GET("/settings", d.Admin.GetSettings)
		admin.PUT("/settings", d.Admin.SaveSettings)

		admin.POST("/uploads/:folder", d.Admin.UploadImage)
	}
}
