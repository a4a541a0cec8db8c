package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kafe-cerita-bot/bot"
	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB       *gorm.DB
	Sessions bot.SessionStore
	Hub      interface{ ClientCount() int }
	now      func() time.Time
}

func NewAdminController(db *gorm.DB, sessions bot.SessionStore, hub interface{ ClientCount() int }) *AdminController {
	return &AdminController{DB: db, Sessions: sessions, Hub: hub, now: time.Now}
}

type dashboardStats struct {
	TotalOrders    int64 `json:"total_orders"`
	TodayOrders    int64 `json:"today_orders"`
	TotalRevenue   int64 `json:"total_revenue"`
	TodayRevenue   int64 `json:"today_revenue"`
	ActiveSessions int   `json:"active_sessions"`
	BarScreens     int   `json:"bar_screens"`
	PaymentStats   struct {
		EWallet int64 `json:"e_wallet"`
		Cash    int64 `json:"cash"`
	} `json:"payment_stats"`
	DiningStats struct {
		DineIn   int64 `json:"dine_in"`
		Takeaway int64 `json:"takeaway"`
	} `json:"dining_stats"`
}

// GetDashboardStats mengambil statistik pesanan bot untuk dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	now := ac.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats dashboardStats
	orders := func() *gorm.DB { return ac.DB.Model(&models.BotOrder{}) }

	queries := []*gorm.DB{
		orders().Count(&stats.TotalOrders),
		orders().Where("created_at >= ?", startOfDay).Count(&stats.TodayOrders),
		orders().Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.TotalRevenue),
		orders().Where("created_at >= ?", startOfDay).Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.TodayRevenue),
		orders().Where("payment_method = ?", string(bot.PaymentEWallet)).Count(&stats.PaymentStats.EWallet),
		orders().Where("payment_method = ?", string(bot.PaymentCash)).Count(&stats.PaymentStats.Cash),
		orders().Where("dining_option = ?", string(bot.DiningDineIn)).Count(&stats.DiningStats.DineIn),
		orders().Where("dining_option = ?", string(bot.DiningTakeaway)).Count(&stats.DiningStats.Takeaway),
	}
	for _, q := range queries {
		if q.Error != nil {
			utils.RespondError(c, http.StatusInternalServerError, q.Error)
			return
		}
	}

	if ac.Sessions != nil {
		stats.ActiveSessions = ac.Sessions.ActiveSessions()
	}
	if ac.Hub != nil {
		stats.BarScreens = ac.Hub.ClientCount()
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}
