package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/kafe-cerita-bot/services"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
)

// MenuCategoryController hanya membaca kategori; kategori baru lahir dari import katalog
type MenuCategoryController struct {
	Catalog *services.CatalogService
}

func NewMenuCategoryController(catalog *services.CatalogService) *MenuCategoryController {
	return &MenuCategoryController{Catalog: catalog}
}

// GetAllCategories
func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	categories, err := mcc.Catalog.GetCategories()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

// GetMenusByCategory
func (mcc *MenuCategoryController) GetMenusByCategory(c *gin.Context) {
	items, err := mcc.Catalog.GetItemsByCategory(c.Param("key"))
	if err != nil {
		utils.RespondError(c, catalogStatus(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menus by category", items)
}
