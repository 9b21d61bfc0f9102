package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type WarehouseHandler struct {
	warehouseService service.WarehouseService
}

func NewWarehouseHandler(warehouseService service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

func (h *WarehouseHandler) RegisterRoutes(router *gin.RouterGroup) {
	warehouses := router.Group("/api/warehouses")
	{
		warehouses.GET("", middleware.RequireRole(), h.ListWarehouses)
		warehouses.GET("/types", middleware.RequireRole(), h.ListWarehouseTypes)
		warehouses.POST("/types", middleware.RequireRole(model.RoleAdmin), h.CreateWarehouseType)
		warehouses.DELETE("/types/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteWarehouseType)
		warehouses.GET("/:id", middleware.RequireRole(), h.GetWarehouse)
		warehouses.GET("/:id/stock", middleware.RequireRole(model.RoleAdmin, model.RoleDirector, model.RoleDeputyDirector, model.RoleBuxgalter, model.RoleHeaderFRP, model.RoleFRP), h.GetStock)
		warehouses.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleHeaderFRP), h.CreateWarehouse)
		warehouses.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleHeaderFRP), h.UpdateWarehouse)
		warehouses.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteWarehouse)
	}
}

// CreateWarehouse registers a new warehouse
// @Summary      Create warehouse
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Param        payload  body      service.WarehouseRequest  true  "Warehouse payload"
// @Success      201      {object}  response.Response{data=service.WarehouseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req service.WarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	wh, err := h.warehouseService.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, wh))
}

// ListWarehouses returns a paginated warehouse list
func (h *WarehouseHandler) ListWarehouses(c *gin.Context) {
	p := pagination.Parse(c)

	warehouses, total, err := h.warehouseService.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, warehouses, total, p.Page, p.Limit))
}

// GetWarehouse returns a single warehouse
func (h *WarehouseHandler) GetWarehouse(c *gin.Context) {
	wh, err := h.warehouseService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, wh))
}

// GetStock proxies the live stock of a warehouse from the ERP system
// @Summary      Warehouse stock
// @Tags         warehouses
// @Produce      json
// @Param        id   path      string  true  "Warehouse ID"
// @Success      200  {object}  response.Response{data=[]erp.StockItem}
// @Failure      404  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/warehouses/{id}/stock [get]
func (h *WarehouseHandler) GetStock(c *gin.Context) {
	items, err := h.warehouseService.Stock(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// UpdateWarehouse modifies an existing warehouse
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	var req service.WarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	wh, err := h.warehouseService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, wh))
}

// DeleteWarehouse removes a warehouse
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	if err := h.warehouseService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Warehouse deleted"}))
}

// CreateWarehouseType registers a new warehouse type
func (h *WarehouseHandler) CreateWarehouseType(c *gin.Context) {
	var req service.WarehouseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	wt, err := h.warehouseService.CreateType(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, wt))
}

// DeleteWarehouseType removes a warehouse type
func (h *WarehouseHandler) DeleteWarehouseType(c *gin.Context) {
	if err := h.warehouseService.DeleteType(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Warehouse type deleted"}))
}

// ListWarehouseTypes returns all warehouse types
func (h *WarehouseHandler) ListWarehouseTypes(c *gin.Context) {
	types, err := h.warehouseService.ListTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, types))
}
