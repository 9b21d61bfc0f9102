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

type DepartmentHandler struct {
	departmentService service.DepartmentService
}

func NewDepartmentHandler(departmentService service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

func (h *DepartmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	departments := router.Group("/api/departments")
	{
		departments.GET("", middleware.RequireRole(), h.ListDepartments)
		departments.GET("/:id", middleware.RequireRole(), h.GetDepartment)
		departments.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateDepartment)
		departments.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateDepartment)
		departments.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteDepartment)
	}
}

// CreateDepartment registers a new department
// @Summary      Create department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        payload  body      service.DepartmentRequest  true  "Department payload"
// @Success      201      {object}  response.Response{data=service.DepartmentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/departments [post]
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req service.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dep, err := h.departmentService.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, dep))
}

// ListDepartments returns a paginated department list
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	p := pagination.Parse(c)

	deps, total, err := h.departmentService.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, deps, total, p.Page, p.Limit))
}

// GetDepartment returns a single department
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	dep, err := h.departmentService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dep))
}

// UpdateDepartment modifies an existing department
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	var req service.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dep, err := h.departmentService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dep))
}

// DeleteDepartment removes a department
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	if err := h.departmentService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Department deleted"}))
}
