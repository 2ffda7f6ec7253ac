package router

import (
	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/domain/identity"
	"github.com/retail/backend/internal/interfaces/http/handler"
	"github.com/retail/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers mounted under the API group
type Handlers struct {
	Product  *handler.ProductHandler
	Movement *handler.MovementHandler
	Alert    *handler.AlertHandler
	Cart     *handler.CartHandler
	Sale     *handler.SaleHandler
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Report   *handler.ReportHandler
	System   *handler.SystemHandler
}

// roleGate returns the gate for min, or a pass-through when authentication
// is switched off and every request runs as the system actor
type roleGate func(min identity.Role) gin.HandlerFunc

func newRoleGate(authEnabled bool) roleGate {
	if !authEnabled {
		return func(identity.Role) gin.HandlerFunc {
			return func(c *gin.Context) { c.Next() }
		}
	}
	return middleware.RequireRole
}

// DomainGroups builds the route groups for every non-nil handler
func DomainGroups(h Handlers, authEnabled bool) []*DomainGroup {
	role := newRoleGate(authEnabled)
	cashier := role(identity.RoleCashier)
	manager := role(identity.RoleManager)
	admin := role(identity.RoleAdmin)

	var groups []*DomainGroup

	if h.Product != nil {
		products := NewDomainGroup("products", "/products")
		products.GET("", cashier, h.Product.List)
		products.POST("", manager, h.Product.Create)
		products.GET("/low-stock", cashier, h.Product.ListLowStock)
		products.GET("/code/:code", cashier, h.Product.GetByCode)
		products.POST("/import", manager, h.Product.Import)
		products.GET("/:id", cashier, h.Product.GetByID)
		products.PUT("/:id", manager, h.Product.Update)
		products.POST("/:id/restock", manager, h.Product.Restock)
		products.POST("/:id/adjust", manager, h.Product.Adjust)
		products.POST("/:id/deactivate", admin, h.Product.Deactivate)
		products.GET("/:id/movements", manager, h.Product.ListMovements)
		groups = append(groups, products)
	}

	if h.Movement != nil {
		movements := NewDomainGroup("movements", "/movements").Use(manager)
		movements.GET("", h.Movement.ListByDateRange)
		movements.GET("/users/:user_id", h.Movement.ListByUser)
		groups = append(groups, movements)
	}

	if h.Alert != nil {
		alerts := NewDomainGroup("alerts", "/alerts")
		alerts.GET("", cashier, h.Alert.ListUnresolved)
		alerts.GET("/count", cashier, h.Alert.CountUnresolved)
		alerts.POST("/:id/resolve", manager, h.Alert.Resolve)
		alerts.DELETE("/resolved", admin, h.Alert.Purge)
		groups = append(groups, alerts)
	}

	if h.Cart != nil {
		carts := NewDomainGroup("carts", "/carts").Use(cashier)
		carts.POST("", h.Cart.Create)
		carts.GET("/:id", h.Cart.Get)
		carts.DELETE("/:id", h.Cart.Abandon)
		carts.POST("/:id/abandon", h.Cart.Abandon)
		carts.POST("/:id/items", h.Cart.AddItem)
		carts.PUT("/:id/items/:product_id", h.Cart.SetQuantity)
		carts.DELETE("/:id/items/:product_id", h.Cart.RemoveItem)
		carts.PUT("/:id/discount", h.Cart.ApplyDiscount)
		carts.DELETE("/:id/discount", h.Cart.ClearDiscount)
		carts.PUT("/:id/payment-method", h.Cart.SetPaymentMethod)
		carts.POST("/:id/checkout", h.Cart.Checkout)
		groups = append(groups, carts)
	}

	if h.Sale != nil || h.Cart != nil {
		sales := NewDomainGroup("sales", "/sales").Use(cashier)
		if h.Cart != nil {
			sales.POST("/quick", h.Cart.QuickSale)
		}
		if h.Sale != nil {
			sales.GET("", h.Sale.List)
			sales.GET("/receipt/:receipt_number", h.Sale.GetByReceipt)
			sales.GET("/:id", h.Sale.GetByID)
		}
		groups = append(groups, sales)
	}

	if h.Auth != nil {
		authGroup := NewDomainGroup("auth", "/auth")
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", cashier, h.Auth.Logout)
		authGroup.GET("/me", cashier, h.Auth.Me)
		authGroup.PUT("/password", cashier, h.Auth.ChangePassword)
		groups = append(groups, authGroup)
	}

	if h.User != nil {
		users := NewDomainGroup("users", "/users")
		users.GET("", manager, h.User.List)
		users.POST("", admin, h.User.Create)
		users.GET("/:id", manager, h.User.GetByID)
		users.POST("/:id/deactivate", admin, h.User.Deactivate)
		groups = append(groups, users)
	}

	if h.Report != nil {
		reports := NewDomainGroup("reports", "/reports").Use(manager)
		sales := reports.Group("sales", "/sales")
		sales.GET("/summary", h.Report.SalesSummary)
		sales.GET("/daily", h.Report.DailySales)
		sales.GET("/top-products", h.Report.TopProducts)
		sales.GET("/cashiers", h.Report.Cashiers)
		sales.GET("/payment-methods", h.Report.PaymentMethods)
		stock := reports.Group("inventory", "/inventory")
		stock.GET("/summary", h.Report.InventorySummary)
		stock.GET("/categories", h.Report.InventoryByCategory)
		stock.GET("/movements", h.Report.Movements)
		groups = append(groups, reports)
	}

	if h.System != nil {
		system := NewDomainGroup("system", "/system").Use(admin)
		jobs := system.Group("jobs", "/jobs")
		jobs.GET("", h.System.ListJobs)
		jobs.POST("/:name/run", h.System.RunJob)
		groups = append(groups, system)
	}

	return groups
}
