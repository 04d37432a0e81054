package main

import (
	"go-marketplace-api/internal/middleware"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/ws"
	"go-marketplace-api/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func registerRoutes(app *fiber.App, h *handlers, jwtManager *jwt.Manager) {
	api := app.Group("/api/v1")

	requireAuth := middleware.RequireAuth(jwtManager, h.userRepo)
	optionalAuth := middleware.OptionalAuth(jwtManager, h.userRepo)
	can := middleware.RequirePrivilege
	canAny := middleware.RequireAnyPrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", h.auth.Register)
	auth.Post("/login", h.auth.Login)
	auth.Post("/reset-password", h.auth.ResetPassword)
	auth.Post("/validate-token", h.auth.ValidateToken)
	auth.Post("/logout", requireAuth, h.auth.Logout)
	auth.Get("/me", requireAuth, h.auth.Me)

	// Catalog reads; a token, when sent, widens what owners and admins see.
	api.Get("/stores", optionalAuth, h.store.GetStores)
	api.Get("/stores/:id", optionalAuth, h.store.GetStore)
	api.Get("/categories", optionalAuth, h.catalog.GetCategories)
	api.Get("/categories/:id", optionalAuth, h.catalog.GetCategory)
	api.Get("/categories/:id/tree", optionalAuth, h.catalog.GetCategoryTree)
	api.Get("/collections", optionalAuth, h.catalog.GetCollections)
	api.Get("/collections/:id", optionalAuth, h.catalog.GetCollection)
	api.Get("/tags", optionalAuth, h.catalog.GetTags)
	api.Get("/products", optionalAuth, h.product.GetProducts)
	api.Get("/products/:id", optionalAuth, h.product.GetProduct)
	api.Get("/products/:id/variations", optionalAuth, h.product.GetVariations)
	api.Get("/products/:id/related", optionalAuth, h.product.GetRelated)
	api.Get("/flash-sales", optionalAuth, h.flashSale.GetFlashSales)
	api.Get("/flash-sales/active", optionalAuth, h.flashSale.GetActive)
	api.Get("/flash-sales/:id", optionalAuth, h.flashSale.GetFlashSale)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Users & roles
	protected.Get("/users", can(model.PrivUserView), h.user.GetUsers)
	protected.Get("/users/:id", can(model.PrivUserView), h.user.GetUser)
	protected.Post("/users", can(model.PrivUserCreate), h.user.CreateUser)
	protected.Put("/users/:id", can(model.PrivUserUpdate), h.user.UpdateUser)
	protected.Delete("/users/:id", can(model.PrivUserDelete), h.user.DeleteUser)
	protected.Put("/users/:id/privileges", can(model.PrivUserUpdatePrivilege), h.user.UpdateUserPrivileges)
	protected.Get("/roles", h.role.GetRoles)
	protected.Get("/privileges", h.role.GetPrivileges)

	// Addresses
	protected.Get("/user-addresses", h.address.GetAddresses)
	protected.Get("/user-addresses/:id", h.address.GetAddress)
	protected.Post("/user-addresses", h.address.CreateAddress)
	protected.Patch("/user-addresses/:id", h.address.UpdateAddress)
	protected.Delete("/user-addresses/:id", h.address.DeleteAddress)

	// Stores
	protected.Post("/stores", can(model.PrivStoreCreate), h.store.CreateStore)
	updateStore := canAny(model.PrivStoreUpdate, model.PrivStoreManageAll)
	protected.Patch("/stores/:id", updateStore, h.store.UpdateStore)
	protected.Delete("/stores/:id", updateStore, h.store.DeleteStore)
	protected.Get("/stores/:id/orders", h.order.GetStoreOrders)
	protected.Post("/stores/:id/settlements", can(model.PrivSettlementManage), h.settlement.SettleStore)
	protected.Get("/stores/:id/settlements", h.settlement.GetStoreSettlements)
	protected.Get("/settlements", can(model.PrivSettlementManage), h.settlement.GetSettlements)

	// Catalog writes
	manageCatalog := can(model.PrivCatalogManage)
	protected.Post("/categories", manageCatalog, h.catalog.CreateCategory)
	protected.Patch("/categories/:id", manageCatalog, h.catalog.UpdateCategory)
	protected.Delete("/categories/:id", manageCatalog, h.catalog.DeleteCategory)
	protected.Post("/collections", manageCatalog, h.catalog.CreateCollection)
	protected.Patch("/collections/:id", manageCatalog, h.catalog.UpdateCollection)
	protected.Delete("/collections/:id", manageCatalog, h.catalog.DeleteCollection)
	protected.Post("/collections/:id/products", manageCatalog, h.catalog.AddCollectionProducts)
	protected.Delete("/collections/:id/products/:productId", manageCatalog, h.catalog.RemoveCollectionProduct)
	protected.Post("/tags", manageCatalog, h.catalog.CreateTag)
	protected.Patch("/tags/:id", manageCatalog, h.catalog.UpdateTag)
	protected.Delete("/tags/:id", manageCatalog, h.catalog.DeleteTag)

	// Products & variations (ownership is checked in the service)
	updateProduct := canAny(model.PrivProductUpdate, model.PrivStoreManageAll)
	deleteProduct := canAny(model.PrivProductDelete, model.PrivStoreManageAll)
	protected.Post("/products", can(model.PrivProductCreate), h.product.CreateProduct)
	protected.Patch("/products/:id", updateProduct, h.product.UpdateProduct)
	protected.Delete("/products/:id", deleteProduct, h.product.DeleteProduct)
	protected.Put("/products/:id/tags", updateProduct, h.product.ReplaceTags)
	protected.Post("/products/:id/variations", updateProduct, h.product.CreateVariation)
	protected.Patch("/product-variations/:id", updateProduct, h.product.UpdateVariation)
	protected.Delete("/product-variations/:id", deleteProduct, h.product.DeleteVariation)
	protected.Post("/products/:id/related", updateProduct, h.product.AddRelated)
	protected.Delete("/products/:id/related/:relatedId", updateProduct, h.product.RemoveRelated)

	// Flash sales
	flash := protected.Group("/flash-sales", can(model.PrivFlashSaleManage))
	flash.Post("/", h.flashSale.CreateFlashSale)
	flash.Patch("/:id", h.flashSale.UpdateFlashSale)
	flash.Delete("/:id", h.flashSale.DeleteFlashSale)
	flash.Put("/:id/items", h.flashSale.ReplaceItems)

	// Cart & wishlist
	protected.Get("/cart", h.cart.GetCart)
	protected.Post("/cart", h.cart.AddToCart)
	protected.Patch("/cart/:id", h.cart.UpdateCartItem)
	protected.Delete("/cart/:id", h.cart.RemoveCartItem)
	protected.Delete("/cart", h.cart.ClearCart)
	protected.Get("/wishlist", h.cart.GetWishlist)
	protected.Post("/wishlist", h.cart.AddToWishlist)
	protected.Delete("/wishlist/:productId", h.cart.RemoveFromWishlist)

	// Coupons & credit codes
	protected.Post("/coupons/validate", h.coupon.ValidateCoupon)
	coupons := protected.Group("/coupons", can(model.PrivCouponManage))
	coupons.Get("/", h.coupon.GetCoupons)
	coupons.Get("/:id", h.coupon.GetCoupon)
	coupons.Post("/", h.coupon.CreateCoupon)
	coupons.Patch("/:id", h.coupon.UpdateCoupon)
	coupons.Delete("/:id", h.coupon.DeleteCoupon)
	coupons.Post("/:id/revoke", h.coupon.RevokeCoupon)

	protected.Post("/credit-codes/validate", h.coupon.ValidateCreditCode)
	credits := protected.Group("/credit-codes", can(model.PrivCreditCodeManage))
	credits.Get("/", h.coupon.GetCreditCodes)
	credits.Get("/:id", h.coupon.GetCreditCode)
	credits.Post("/", h.coupon.CreateCreditCode)
	credits.Patch("/:id", h.coupon.UpdateCreditCode)
	credits.Delete("/:id", h.coupon.DeleteCreditCode)
	credits.Post("/:id/revoke", h.coupon.RevokeCreditCode)

	// Orders
	protected.Post("/orders", h.order.Checkout)
	protected.Get("/orders", h.order.GetOrders)
	protected.Get("/orders/:id", h.order.GetOrder)
	protected.Get("/store-orders/:id", h.order.GetStoreOrder)
	protected.Patch("/store-orders/:id/status", can(model.PrivOrderFulfil), h.order.UpdateStoreOrderStatus)

	// Wallet
	protected.Get("/user-wallet", h.wallet.GetWallet)
	protected.Get("/transactions", h.wallet.GetTransactions)
	protected.Get("/transactions/:id", h.wallet.GetTransaction)
	protected.Post("/topups", h.wallet.Topup)
	protected.Get("/topups", h.wallet.GetTopups)
	protected.Post("/withdrawals", h.wallet.RequestWithdrawal)
	protected.Get("/withdrawals", h.wallet.GetWithdrawals)
	protected.Get("/withdrawals/:id", h.wallet.GetWithdrawal)
	protected.Post("/withdrawals/:id/process", can(model.PrivWithdrawalProcess), h.wallet.ProcessWithdrawal)
	protected.Post("/withdrawals/:id/reject", can(model.PrivWithdrawalProcess), h.wallet.RejectWithdrawal)

	// Media
	media := protected.Group("/media", can(model.PrivMediaManage))
	media.Get("/folders", h.media.GetFolders)
	media.Post("/folders", h.media.CreateFolder)
	media.Patch("/folders/:id", h.media.UpdateFolder)
	media.Delete("/folders/:id", h.media.DeleteFolder)
	media.Get("/folders/:id/tree", h.media.GetFolderTree)
	media.Get("/folders/:id/breadcrumb", h.media.GetBreadcrumb)
	media.Get("/files", h.media.GetFiles)
	media.Post("/files", h.media.UploadFile)
	media.Delete("/files/:id", h.media.DeleteFile)

	// Dashboard
	protected.Get("/dashboard/stats", can(model.PrivDashboardView), h.dashboard.GetDashboardStats)
	protected.Get("/dashboard/sales", can(model.PrivDashboardView), h.dashboard.GetSales)
}

func registerWebSocket(app *fiber.App, hub *ws.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(hub.Serve))
}
