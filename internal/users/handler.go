package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"job-selector/internal/shared/server/middleware"
	"job-selector/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterAuthRoutes mounts the unauthenticated sign-up and sign-in routes.
func (h *Handler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
}

// RegisterRoutes mounts the routes that require a session token.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("/users", h.list)
	rg.GET("/users/:id", h.get)
	rg.PATCH("/users/:id", h.update)
	rg.DELETE("/users/:id", h.delete)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Identity
	Token string `json:"token"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Validation(c, "invalid request body")
		return
	}
	// Self-service accounts always start with the default role.
	identity, err := h.Svc.Register(c.Request.Context(), RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.Created(c, identity)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Validation(c, "invalid request body")
		return
	}
	identity, err := h.Svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	token, err := h.Svc.GenerateToken(identity.UserID)
	if err != nil {
		respond.Internal(c)
		return
	}
	respond.OK(c, loginResponse{Identity: identity, Token: token})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) list(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		list []User
		err  error
	)
	if role, ok := c.GetQuery("role"); ok {
		list, err = h.Svc.ListByRole(ctx, role)
	} else if day, ok := c.GetQuery("date"); ok {
		list, err = h.Svc.ListByDate(ctx, day)
	} else {
		list, err = h.Svc.List(ctx)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"users": list})
}

func (h *Handler) get(c *gin.Context) {
	if _, ok := h.requireSelfOrAdmin(c); !ok {
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) update(c *gin.Context) {
	caller, ok := h.requireSelfOrAdmin(c)
	if !ok {
		return
	}
	var patch UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Validation(c, "invalid request body")
		return
	}
	if patch.Role != nil && caller.Role != RoleAdmin {
		respond.Error(c, http.StatusForbidden, "forbidden", "only admins can change roles", nil)
		return
	}
	modified, err := h.Svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if modified == 0 {
		respond.NotFound(c, "user not found")
		return
	}
	respond.OK(c, gin.H{"modified": modified})
}

func (h *Handler) delete(c *gin.Context) {
	if _, ok := h.requireSelfOrAdmin(c); !ok {
		return
	}
	deleted, err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": deleted})
}

func (h *Handler) caller(c *gin.Context) (User, bool) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "account no longer exists", nil)
			return User{}, false
		}
		respond.Internal(c)
		return User{}, false
	}
	return user, true
}

func (h *Handler) requireAdmin(c *gin.Context) (User, bool) {
	user, ok := h.caller(c)
	if !ok {
		return User{}, false
	}
	if user.Role != RoleAdmin {
		respond.Error(c, http.StatusForbidden, "forbidden", "admin role required", nil)
		return User{}, false
	}
	return user, true
}

func (h *Handler) requireSelfOrAdmin(c *gin.Context) (User, bool) {
	user, ok := h.caller(c)
	if !ok {
		return User{}, false
	}
	if user.ID != c.Param("id") && user.Role != RoleAdmin {
		respond.Error(c, http.StatusForbidden, "forbidden", "not allowed to access this user", nil)
		return User{}, false
	}
	return user, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Validation(c, strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "))
	case errors.Is(err, ErrDuplicateUsername):
		respond.Error(c, http.StatusConflict, "conflict", "Username already exists", nil)
	case errors.Is(err, ErrInvalidCredentials):
		respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", nil)
	case errors.Is(err, ErrNotFound):
		respond.NotFound(c, "user not found")
	default:
		respond.Internal(c)
	}
}
