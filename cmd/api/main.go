package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-marketplace-api/internal/events"
	"go-marketplace-api/internal/handler"
	"go-marketplace-api/internal/health"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/internal/service"
	"go-marketplace-api/internal/ws"
	"go-marketplace-api/pkg/config"
	"go-marketplace-api/pkg/database"
	"go-marketplace-api/pkg/jwt"
	"go-marketplace-api/pkg/payment"
	"go-marketplace-api/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config (.env + environment)
	cfg := config.Load()

	// 2. Setup Database
	db := database.Connect(cfg)
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Seed default privileges, roles, and admin user
	if err := service.NewSeeder(db).Seed(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: seeding failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Setup WebSocket Hub and event fan-out
	wsHub := ws.NewHub()
	go wsHub.Run()

	publisher := events.Multi{events.HubPublisher{Hub: wsHub}}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, events stay local: %v", err)
		} else {
			defer amqpPublisher.Close()
			publisher = append(publisher, amqpPublisher)
		}
	}

	// 5. Object storage and payment gateway
	var store storage.Store
	if cfg.S3Endpoint != "" {
		minioStore, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatalf("Failed to connect object storage: %v", err)
		}
		store = minioStore
	} else {
		log.Println("Warning: S3_ENDPOINT not set, media is kept in memory")
		store = storage.NewMemoryStore()
	}
	verifier := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentSecretKey)
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// 6. Health
	checker := health.NewChecker(db)
	if cfg.GRPCHealthPort != "" {
		grpcServer, err := checker.ServeGRPC(cfg.GRPCHealthPort)
		if err != nil {
			log.Fatal(err)
		}
		defer grpcServer.GracefulStop()
		go checker.Watch(ctx, 15*time.Second)
	}

	// 7. Dependency Injection (Wiring Layers)
	h := wire(db, cfg, publisher, store, verifier, jwtManager)

	// 8. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Marketplace API v1.0",
		ErrorHandler: handler.ErrorHandler,
		BodyLimit:    int(service.MaxUploadSize) + 1<<20,
	})

	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
	}))

	registerRoutes(app, h, jwtManager)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := checker.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	registerWebSocket(app, wsHub)

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

type handlers struct {
	userRepo repository.UserRepository

	auth       *handler.AuthHandler
	user       *handler.UserHandler
	role       *handler.RoleHandler
	address    *handler.AddressHandler
	store      *handler.StoreHandler
	catalog    *handler.CatalogHandler
	product    *handler.ProductHandler
	flashSale  *handler.FlashSaleHandler
	cart       *handler.CartHandler
	coupon     *handler.CouponHandler
	order      *handler.OrderHandler
	wallet     *handler.WalletHandler
	settlement *handler.SettlementHandler
	media      *handler.MediaHandler
	dashboard  *handler.DashboardHandler
}

func wire(db *gorm.DB, cfg *config.Config, publisher events.Publisher, store storage.Store, verifier payment.Verifier, jwtManager *jwt.Manager) *handlers {
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	addressRepo := repository.NewAddressRepo(db)
	storeRepo := repository.NewStoreRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	collectionRepo := repository.NewCollectionRepo(db)
	tagRepo := repository.NewTagRepo(db)
	productRepo := repository.NewProductRepo(db)
	variationRepo := repository.NewVariationRepo(db)
	flashSaleRepo := repository.NewFlashSaleRepo(db)
	cartRepo := repository.NewCartRepo(db)
	wishlistRepo := repository.NewWishlistRepo(db)
	couponRepo := repository.NewCouponRepo(db)
	creditRepo := repository.NewCreditCodeRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	walletRepo := repository.NewWalletRepo(db)
	withdrawalRepo := repository.NewWithdrawalRepo(db)
	settlementRepo := repository.NewSettlementRepo(db)
	mediaRepo := repository.NewMediaRepo(db)
	reportRepo := repository.NewReportRepo(db)

	pricer := service.NewPricer(flashSaleRepo)

	authService := service.NewAuthService(db, userRepo, roleRepo, walletRepo, jwtManager)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	addressService := service.NewAddressService(addressRepo)
	storeService := service.NewStoreService(storeRepo, cfg.DefaultCommissionRate)
	catalogService := service.NewCatalogService(categoryRepo, collectionRepo, tagRepo, productRepo)
	productService := service.NewProductService(productRepo, variationRepo, categoryRepo, tagRepo, storeService, pricer)
	flashSaleService := service.NewFlashSaleService(flashSaleRepo, variationRepo)
	cartService := service.NewCartService(cartRepo, variationRepo, pricer)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo, pricer)
	couponService := service.NewCouponService(couponRepo, storeRepo, userRepo, productRepo, cartRepo, pricer)
	creditService := service.NewCreditCodeService(creditRepo, userRepo, cartRepo, pricer)
	orderService := service.NewOrderService(db, orderRepo, cartRepo, variationRepo, couponRepo, creditRepo, walletRepo, addressRepo, storeRepo, pricer, verifier, publisher)
	walletService := service.NewWalletService(db, walletRepo, verifier, publisher)
	withdrawalService := service.NewWithdrawalService(db, withdrawalRepo, walletRepo, publisher)
	settlementService := service.NewSettlementService(db, settlementRepo, orderRepo, storeRepo, walletRepo, publisher)
	mediaService := service.NewMediaService(mediaRepo, store)
	dashService := service.NewDashboardService(reportRepo)

	return &handlers{
		userRepo:   userRepo,
		auth:       handler.NewAuthHandler(authService),
		user:       handler.NewUserHandler(userService),
		role:       handler.NewRoleHandler(roleRepo, privilegeRepo),
		address:    handler.NewAddressHandler(addressService),
		store:      handler.NewStoreHandler(storeService),
		catalog:    handler.NewCatalogHandler(catalogService),
		product:    handler.NewProductHandler(productService),
		flashSale:  handler.NewFlashSaleHandler(flashSaleService),
		cart:       handler.NewCartHandler(cartService, wishlistService),
		coupon:     handler.NewCouponHandler(couponService, creditService),
		order:      handler.NewOrderHandler(orderService),
		wallet:     handler.NewWalletHandler(walletService, withdrawalService),
		settlement: handler.NewSettlementHandler(settlementService),
		media:      handler.NewMediaHandler(mediaService),
		dashboard:  handler.NewDashboardHandler(dashService),
	}
}
