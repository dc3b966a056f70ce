package resumes

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"job-selector/internal/shared/server/middleware"
	"job-selector/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.POST("/resumes", h.create)
	rg.GET("/resumes/:id", h.get)
	rg.PATCH("/resumes/:id", h.update)
	rg.DELETE("/resumes/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	ctx := c.Request.Context()

	var (
		list []Resume
		err  error
	)
	if role, ok := c.GetQuery("role"); ok {
		list, err = h.Svc.ListByRole(ctx, role, userID)
	} else if day, ok := c.GetQuery("date"); ok {
		list, err = h.Svc.ListByDate(ctx, day, userID)
	} else {
		list, err = h.Svc.ListByUser(ctx, userID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"resumes": list})
}

func (h *Handler) get(c *gin.Context) {
	resume, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, resume)
}

func (h *Handler) create(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil || payload == nil {
		respond.Validation(c, "request body must be a JSON object")
		return
	}
	resume, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, resume.ResumeID)
	respond.Created(c, gin.H{"id": resume.StorageID, "resume_id": resume.ResumeID})
}

func (h *Handler) update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil || fields == nil {
		respond.Validation(c, "request body must be a JSON object")
		return
	}
	c.Set(middleware.ResumeIDKey, c.Param("id"))
	modified, err := h.Svc.Update(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c), fields)
	if err != nil {
		writeError(c, err)
		return
	}
	if modified == 0 {
		respond.NotFound(c, "resume not found")
		return
	}
	respond.OK(c, gin.H{"modified": modified})
}

func (h *Handler) delete(c *gin.Context) {
	c.Set(middleware.ResumeIDKey, c.Param("id"))
	deleted, err := h.Svc.Delete(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": deleted})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Validation(c, strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "))
	case errors.Is(err, ErrNotFound):
		respond.NotFound(c, "resume not found")
	default:
		respond.Internal(c)
	}
}
