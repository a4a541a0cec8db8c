package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kafe-cerita-bot/services"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
)

type OrderController struct {
	Orders *services.OrderLogService
}

func NewOrderController(orders *services.OrderLogService) *OrderController {
	return &OrderController{Orders: orders}
}

// GetAllOrders -> pesanan bot terbaru, ?limit= maksimal 200
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	orders, err := oc.Orders.ListOrders(limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All orders", orders)
}

// GetOrderByNumber
func (oc *OrderController) GetOrderByNumber(c *gin.Context) {
	order, err := oc.Orders.GetOrderByNumber(c.Param("order_number"))
	if errors.Is(err, services.ErrOrderNotFound) {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}
