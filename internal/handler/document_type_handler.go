package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentTypeHandler struct {
	typeService service.DocumentTypeService
}

func NewDocumentTypeHandler(typeService service.DocumentTypeService) *DocumentTypeHandler {
	return &DocumentTypeHandler{typeService: typeService}
}

func (h *DocumentTypeHandler) RegisterRoutes(router *gin.RouterGroup) {
	types := router.Group("/api/document-types")
	{
		types.GET("", middleware.RequireRole(), h.ListDocumentTypes)
		types.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateDocumentType)
		types.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateDocumentType)
		types.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteDocumentType)
	}
}

// CreateDocumentType registers a new workflow configuration
// @Summary      Create document type
// @Tags         document-types
// @Accept       json
// @Produce      json
// @Param        payload  body      service.DocumentTypeRequest  true  "Type payload"
// @Success      201      {object}  response.Response{data=model.DocumentType}
// @Failure      400      {object}  response.Response
// @Router       /api/document-types [post]
func (h *DocumentTypeHandler) CreateDocumentType(c *gin.Context) {
	var req service.DocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dt, err := h.typeService.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, dt))
}

// ListDocumentTypes returns all workflow configurations
func (h *DocumentTypeHandler) ListDocumentTypes(c *gin.Context) {
	types, err := h.typeService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, types))
}

// UpdateDocumentType modifies an existing workflow configuration
func (h *DocumentTypeHandler) UpdateDocumentType(c *gin.Context) {
	var req service.DocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	dt, err := h.typeService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, dt))
}

// DeleteDocumentType removes a workflow configuration
func (h *DocumentTypeHandler) DeleteDocumentType(c *gin.Context) {
	if err := h.typeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Document type deleted"}))
}
