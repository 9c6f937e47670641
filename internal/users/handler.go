package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mjaffal21/devcamper-api/internal/httpx"
)

// Handler exposes the admin-only user management endpoints. Route guards are
// attached at registration time; every handler here assumes an admin caller.
type Handler struct {
	db    *gorm.DB
	store Store
	hash  func(string) (string, error)
}

// NewHandler creates the user management handler. hash is the password
// hasher; injected so this package stays independent of the auth package.
func NewHandler(db *gorm.DB, store Store, hash func(string) (string, error)) *Handler {
	return &Handler{db: db, store: store, hash: hash}
}

// RegisterRoutes mounts the user routes. guards run before every handler.
func (h *Handler) RegisterRoutes(r *gin.Engine, guards ...gin.HandlerFunc) {
	g := r.Group("/api/v1/users")
	g.Use(guards...)

	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	page, limit := pagination(c)

	var total int64
	if err := h.db.Model(&User{}).Count(&total).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}

	var list []User
	err := h.db.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	if err != nil {
		httpx.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": total, "data": list})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	user, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Error(c, http.StatusNotFound, "user not found")
			return
		}
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, user)
}

type createUserDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user publisher admin"`
}

func (h *Handler) Create(c *gin.Context) {
	var body createUserDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := h.hash(body.Password)
	if err != nil {
		httpx.InternalError(c, err)
		return
	}
	role := body.Role
	if role == "" {
		role = RoleUser
	}
	user := &User{Name: body.Name, Email: body.Email, PasswordHash: hashed, Role: role}
	if err := h.store.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			httpx.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, user)
}

type updateUserDTO struct {
	Name     string `json:"name" binding:"omitempty"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"omitempty,oneof=user publisher admin"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var body updateUserDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	fields := map[string]interface{}{}
	if body.Name != "" {
		fields["name"] = body.Name
	}
	if body.Email != "" {
		fields["email"] = body.Email
	}
	if body.Role != "" {
		fields["role"] = body.Role
	}
	if body.Password != "" {
		hashed, err := h.hash(body.Password)
		if err != nil {
			httpx.InternalError(c, err)
			return
		}
		fields["password_hash"] = hashed
	}
	if len(fields) == 0 {
		httpx.Error(c, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.store.UpdateFields(c.Request.Context(), id, fields); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.Error(c, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrDuplicateEmail):
			httpx.Error(c, http.StatusBadRequest, err.Error())
		default:
			httpx.InternalError(c, err)
		}
		return
	}
	user, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, user)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Error(c, http.StatusNotFound, "user not found")
			return
		}
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, gin.H{})
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	return page, limit
}
