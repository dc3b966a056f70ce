package analysis

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"job-selector/internal/shared/server/middleware"
	"job-selector/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the analysis route to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 10MB", nil)
			return
		}
		respond.Validation(c, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Validation(c, "unable to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		respond.Validation(c, "unable to read file")
		return
	}
	if len(data) > maxUploadSize {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds 10MB", nil)
		return
	}

	save := false
	if raw := strings.TrimSpace(c.PostForm("save")); raw != "" {
		save, err = strconv.ParseBool(raw)
		if err != nil {
			respond.Validation(c, "save must be a boolean")
			return
		}
	}

	result, err := h.Svc.Analyze(c.Request.Context(), Request{
		UserID:         middleware.UserIDFromContext(c),
		FileName:       fileHeader.Filename,
		Data:           data,
		JobDescription: c.PostForm("jobDescription"),
		RequestedRole:  c.PostForm("requestedRole"),
		RoleLevels:     splitLevels(c.PostFormArray("roleLevel")),
		Save:           save,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "only PDF and DOCX files are supported", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Validation(c, strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "))
		default:
			respond.Internal(c)
		}
		return
	}

	if result.ResumeID != "" {
		c.Set(middleware.ResumeIDKey, result.ResumeID)
	}
	if failed := result.FailedSteps(); len(failed) > 0 {
		c.Set(middleware.LLMStepKey, strings.Join(failed, ","))
	}
	respond.OK(c, result)
}

// splitLevels accepts repeated fields as well as comma separated values.
func splitLevels(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
