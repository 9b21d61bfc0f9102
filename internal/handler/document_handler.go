package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService service.DocumentService
	workflowService service.WorkflowService
}

func NewDocumentHandler(documentService service.DocumentService, workflowService service.WorkflowService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		workflowService: workflowService,
	}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/api/documents", middleware.RequireRole())
	{
		docs.POST("", h.CreateDocument)
		docs.GET("", h.ListDocuments)
		docs.GET("/:id", h.GetDocument)
		docs.GET("/:id/steps", h.GetSteps)
		docs.GET("/:id/history", h.GetHistory)
		docs.PUT("/:id/approve", h.ApproveStep)
		docs.PUT("/:id/return", h.ReturnDocument)
		docs.PUT("/:id/resolve", h.ResolveReturn)
	}
}

// workflowActionRequest carries the optional note attached to a transition
type workflowActionRequest struct {
	Note string `json:"note"`
}

// CreateDocument registers a document and materializes its approval chain
// @Summary      Create document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDocumentRequest  true  "Document payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// ListDocuments returns documents visible to the caller
// @Summary      List documents
// @Description  scope=mine returns own documents, scope=pending returns documents waiting on the caller
// @Tags         documents
// @Produce      json
// @Param        scope     query     string  false  "mine | pending"
// @Param        finished  query     bool    false  "Filter by finished state"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response.Response
// @Router       /api/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	p := pagination.Parse(c)

	filter := service.DocumentListFilter{
		Scope: c.Query("scope"),
		Page:  p.Page,
		Limit: p.Limit,
	}
	if raw := c.Query("finished"); raw != "" {
		finished := raw == "true"
		filter.Finished = &finished
	}

	docs, total, err := h.documentService.ListDocuments(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, docs, total, p.Page, p.Limit))
}

// GetDocument returns one document with its approval chain attached
// @Summary      Get document
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.documentService.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// GetSteps returns the ordered approval ledger of a document
// @Summary      Document steps
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  response.Response{data=[]service.StepResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/documents/{id}/steps [get]
func (h *DocumentHandler) GetSteps(c *gin.Context) {
	steps, err := h.workflowService.Steps(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, steps))
}

// GetHistory returns the active status log entries of a document
// @Summary      Document history
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  response.Response{data=[]service.HistoryEntry}
// @Failure      404  {object}  response.Response
// @Router       /api/documents/{id}/history [get]
func (h *DocumentHandler) GetHistory(c *gin.Context) {
	history, err := h.workflowService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// ApproveStep confirms the pending step assigned to the caller
// @Summary      Approve step
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true   "Document ID"
// @Param        payload  body      workflowActionRequest  false  "Optional note"
// @Success      200      {object}  response.Response{data=service.StepResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/documents/{id}/approve [put]
func (h *DocumentHandler) ApproveStep(c *gin.Context) {
	var req workflowActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Empty body is fine, the note is optional
		req.Note = ""
	}

	step, err := h.workflowService.Approve(c.Request.Context(), c.Param("id"), currentUserID(c), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, step))
}

// ReturnDocument sends the document back to the chain start for rework
// @Summary      Return document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Document ID"
// @Param        payload  body      workflowActionRequest  true  "Return note"
// @Success      200      {object}  response.Response{data=service.StepResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/documents/{id}/return [put]
func (h *DocumentHandler) ReturnDocument(c *gin.Context) {
	var req workflowActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Note == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "A note explaining the return is required"))
		return
	}

	step, err := h.workflowService.Return(c.Request.Context(), c.Param("id"), currentUserID(c), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, step))
}

// ResolveReturn marks the open return as fixed and reopens the pending step
// @Summary      Resolve return
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true   "Document ID"
// @Param        payload  body      workflowActionRequest  false  "Optional note"
// @Success      200      {object}  response.Response{data=service.StepResponse}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/documents/{id}/resolve [put]
func (h *DocumentHandler) ResolveReturn(c *gin.Context) {
	var req workflowActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Note = ""
	}

	step, err := h.workflowService.Resolve(c.Request.Context(), c.Param("id"), currentUserID(c), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, step))
}
