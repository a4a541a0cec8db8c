package controllers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/services"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
)

const maxCatalogUpload = 1 << 20

// MenuBroadcaster meneruskan perubahan katalog ke layar bar yang terhubung
type MenuBroadcaster interface {
	BroadcastMenuUpdate(item models.Menu)
	BroadcastMenuDelete(id string)
	BroadcastInfoUpdate(info string)
}

type MenuController struct {
	Catalog *services.CatalogService
	Hub     MenuBroadcaster
}

func NewMenuController(catalog *services.CatalogService, hub MenuBroadcaster) *MenuController {
	return &MenuController{Catalog: catalog, Hub: hub}
}

// catalogStatus memetakan error katalog ke HTTP status
func catalogStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrMenuNotFound), errors.Is(err, services.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateMenuName):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidMenu), errors.Is(err, services.ErrEmptyInfoText):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetAllMenus
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	items, err := mc.Catalog.GetAllItems()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menus", items)
}

// GetMenuByID
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	item, err := mc.Catalog.GetItem(c.Param("menu_id"))
	if err != nil {
		utils.RespondError(c, catalogStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", item)
}

// CreateMenu
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var input services.MenuInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := mc.Catalog.AddItem(input)
	if err != nil {
		utils.RespondError(c, catalogStatus(err), err)
		return
	}

	utils.InfoLogger.Printf("Menu %s (%s) added to %s", item.ID, item.Name, item.Category.Key)
	if mc.Hub != nil {
		mc.Hub.BroadcastMenuUpdate(*item)
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu created", item)
}

// UpdateMenu
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var update services.MenuUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := mc.Catalog.UpdateItem(c.Param("menu_id"), update)
	if err != nil {
		utils.RespondError(c, catalogStatus(err), err)
		return
	}

	if mc.Hub != nil {
		mc.Hub.BroadcastMenuUpdate(*item)
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", item)
}

// DeleteMenu
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id := c.Param("menu_id")
	if err := mc.Catalog.DeleteItem(id); err != nil {
		utils.RespondError(c, catalogStatus(err), err)
		return
	}

	utils.InfoLogger.Printf("Menu %s deleted", id)
	if mc.Hub != nil {
		mc.Hub.BroadcastMenuDelete(id)
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", nil)
}

// GetOrderInfo
func (mc *MenuController) GetOrderInfo(c *gin.Context) {
	info, err := mc.Catalog.GetInfoText()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order info", gin.H{"info_pemesanan": info})
}

// UpdateOrderInfo
func (mc *MenuController) UpdateOrderInfo(c *gin.Context) {
	var body struct {
		Info string `json:"info_pemesanan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := mc.Catalog.UpdateInfoText(body.Info); err != nil {
		utils.RespondError(c, catalogStatus(err), err)
		return
	}

	if mc.Hub != nil {
		mc.Hub.BroadcastInfoUpdate(body.Info)
	}
	utils.RespondJSON(c, http.StatusOK, "Order info updated", nil)
}

// ImportMenu menerima file menu_data.json lewat form field "file" atau body JSON langsung
func (mc *MenuController) ImportMenu(c *gin.Context) {
	var reader io.Reader
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		defer f.Close()
		reader = io.LimitReader(f, maxCatalogUpload)
	} else {
		reader = io.LimitReader(c.Request.Body, maxCatalogUpload)
	}

	result, err := mc.Catalog.ImportJSON(reader)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.InfoLogger.Printf("Catalog imported: %d categories, %d items", result.Categories, result.Items)
	utils.RespondJSON(c, http.StatusOK, "Catalog imported", result)
}

// ExportMenu mengunduh katalog dalam format menu_data.json
func (mc *MenuController) ExportMenu(c *gin.Context) {
	var buf bytes.Buffer
	if err := mc.Catalog.ExportJSON(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="menu_data.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}
