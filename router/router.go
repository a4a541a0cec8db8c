package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kafe-cerita-bot/bot"
	"github.com/yeremiapane/kafe-cerita-bot/controllers"
	"github.com/yeremiapane/kafe-cerita-bot/kds"
	"github.com/yeremiapane/kafe-cerita-bot/middlewares"
	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/services"
	"gorm.io/gorm"
)

// Deps adalah semua komponen yang dibutuhkan router
type Deps struct {
	DB                *gorm.DB
	Conversation      *bot.Conversation
	Catalog           *services.CatalogService
	Orders            *services.OrderLogService
	Users             *services.UserService
	Hub               *kds.Hub
	CORSOrigin        string
	ChatRatePerMinute int
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(deps.Users)
	categoryCtrl := controllers.NewMenuCategoryController(deps.Catalog)
	menuCtrl := controllers.NewMenuController(deps.Catalog, deps.Hub)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	chatCtrl := controllers.NewChatController(deps.Conversation)
	adminCtrl := controllers.NewAdminController(deps.DB, deps.Conversation.Store(), deps.Hub)
	kdsCtrl := controllers.NewKDSController(deps.Hub, deps.CORSOrigin)

	loginLimiter := middlewares.NewKeyedRateLimiter(10, 5)
	chatLimiter := middlewares.NewKeyedRateLimiter(deps.ChatRatePerMinute, deps.ChatRatePerMinute)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", middlewares.PrometheusHandler())

	r.POST("/login", loginLimiter.Limit(middlewares.ClientIPKey), userCtrl.Login)

	r.POST("/chat/messages", chatLimiter.Limit(middlewares.ChatUserKey), chatCtrl.PostMessage)

	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/categories/:key/menus", categoryCtrl.GetMenusByCategory)
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
	r.GET("/order-info", menuCtrl.GetOrderInfo)

	staff := r.Group("/")
	staff.Use(middlewares.AuthMiddleware())
	staff.Use(middlewares.RequireRole(models.RoleAdmin, models.RoleBarista))
	{
		staff.GET("/kds/ws", kdsCtrl.Connect)
		staff.GET("/profile", userCtrl.GetProfile)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	admin.Use(middlewares.RequireRole(models.RoleAdmin))
	admin.Use(middlewares.AdminAuditLogger())
	{
		admin.POST("/users", userCtrl.Register)

		admin.POST("/menus", menuCtrl.CreateMenu)
		admin.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
		admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)
		admin.PUT("/order-info", menuCtrl.UpdateOrderInfo)
		admin.POST("/catalog/import", menuCtrl.ImportMenu)
		admin.GET("/catalog/export", menuCtrl.ExportMenu)

		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.GET("/orders/:order_number", orderCtrl.GetOrderByNumber)

		admin.GET("/sessions/:user_id", chatCtrl.GetSession)
		admin.DELETE("/sessions/:user_id", chatCtrl.ResetSession)

		admin.GET("/dashboard", adminCtrl.GetDashboardStats)
	}

	return r
}
