package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techshop_back_end/internal/admin"
	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/cart"
	"techshop_back_end/internal/checkout"
	"techshop_back_end/internal/config"
	"techshop_back_end/internal/database"
	adminhandlers "techshop_back_end/internal/handlers/admin"
	"techshop_back_end/internal/handlers/payment"
	"techshop_back_end/internal/handlers/product"
	"techshop_back_end/internal/handlers/user"
	"techshop_back_end/internal/middleware"
	"techshop_back_end/internal/repository"
	"techshop_back_end/internal/routes"
	"techshop_back_end/internal/services"
	"techshop_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	database.ConnectDatabases(cfg)
	defer database.Close()

	deps, submit := buildDependencies(cfg)
	r := gin.Default()
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("🚀 TechShop server listening on port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🔌 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Forced shutdown: %v", err)
	}
	submit.Wait()
}

// buildDependencies wires repositories, services and handlers on top of the
// connections opened by database.ConnectDatabases.
func buildDependencies(cfg *config.Config) (routes.Dependencies, *checkout.Service) {
	catalogDB := database.Scylla.MustSession(database.RoleCatalog)
	customersDB := database.Scylla.MustSession(database.RoleCustomers)
	ordersDB := database.Scylla.MustSession(database.RoleOrders)

	products := repository.NewProductRepository(catalogDB)
	categories := repository.NewCategoryRepository(catalogDB)
	banners := repository.NewBannerRepository(catalogDB)
	reviews := repository.NewReviewRepository(catalogDB)
	settings := repository.NewSettingsRepository(catalogDB)
	customers := repository.NewCustomerRepository(customersDB)
	orders := repository.NewOrderRepository(ordersDB)

	rc := cache.New(database.Redis)
	persister := cart.NewRedisPersister(database.Redis)
	carts := cart.NewManager(persister)

	pix := utils.NewPixIssuer(cfg)
	mailer := utils.NewMailer(cfg)
	notifier := utils.NewOrderNotifier(mailer, pix)
	payments := services.NewPayments(cfg, pix)
	search := services.NewProductIndex(database.Elastic)
	images := services.NewImageStore(database.MinIO, cfg)

	office := admin.New(admin.Repositories{
		Products:   products,
		Categories: categories,
		Banners:    banners,
		Orders:     orders,
		Reviews:    reviews,
		Settings:   settings,
	}, rc, admin.WithSearch(search), admin.WithStatusNotifier(notifier))

	checkoutOpts := []checkout.Option{
		checkout.WithNotifier(notifier),
		checkout.WithOrderObserver(office.Orders.Created),
	}
	if pix != nil {
		checkoutOpts = append(checkoutOpts, checkout.WithPaymentPreparer(payments))
	}
	submit := checkout.NewService(orders, uuid.NewString, checkoutOpts...)

	return routes.Dependencies{
		Config:   cfg,
		Cache:    rc,
		Sessions: middleware.NewSessionStore(cfg),
		Catalog: product.NewCatalog(products, categories, banners, reviews, settings, search, rc,
			product.WithReviewObserver(office.Reviews.Created)),
		Cart:     user.NewCart(carts, products, categories, persister, cfg.AllowOrigins),
		Account:  user.NewAccount(customers, orders, rc, []byte(cfg.JWTSecret), cfg.TokenTTL, notifier, cfg.ShopURL),
		Checkout: payment.NewCheckout(submit, carts, orders, payments, office),
		Admin:    adminhandlers.New(office, images),
	}, submit
}
