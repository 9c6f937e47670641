package courses

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mjaffal21/devcamper-api/internal/auth"
	"github.com/mjaffal21/devcamper-api/internal/bootcamps"
	"github.com/mjaffal21/devcamper-api/internal/httpx"
	"github.com/mjaffal21/devcamper-api/internal/users"
)

// Handler exposes the course endpoints. Courses mount both standalone and
// nested under a bootcamp.
type Handler struct {
	db *gorm.DB
}

// NewHandler creates the course handler.
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes mounts the course routes.
func (h *Handler) RegisterRoutes(r *gin.Engine, protect gin.HandlerFunc) {
	publish := auth.RequireRoles(users.RolePublisher, users.RoleAdmin)

	g := r.Group("/api/v1/courses")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", protect, publish, h.Update)
	g.DELETE("/:id", protect, publish, h.Delete)

	nested := r.Group("/api/v1/bootcamps/:id/courses")
	nested.GET("", h.ListByBootcamp)
	nested.POST("", protect, publish, h.Create)
}

func (h *Handler) List(c *gin.Context) {
	var list []Course
	if err := h.db.Preload("Bootcamp").Find(&list).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (h *Handler) ListByBootcamp(c *gin.Context) {
	bootcampID, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var list []Course
	if err := h.db.Where("bootcamp_id = ?", bootcampID).Find(&list).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (h *Handler) Get(c *gin.Context) {
	course, ok := h.fetch(c)
	if !ok {
		return
	}
	httpx.OK(c, http.StatusOK, course)
}

type courseDTO struct {
	Title                string  `json:"title" binding:"required"`
	Description          string  `json:"description" binding:"required"`
	Weeks                int     `json:"weeks" binding:"required,min=1"`
	Tuition              float64 `json:"tuition" binding:"required,min=0"`
	MinimumSkill         string  `json:"minimum_skill" binding:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool    `json:"scholarship_available"`
}

// Create adds a course under a bootcamp. The bootcamp must exist (404 first)
// and belong to the caller unless the caller is an admin.
func (h *Handler) Create(c *gin.Context) {
	bootcampID, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}

	var bootcamp bootcamps.Bootcamp
	if err := h.db.First(&bootcamp, bootcampID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(c, http.StatusNotFound, fmt.Sprintf("bootcamp not found with id of %d", bootcampID))
			return
		}
		httpx.InternalError(c, err)
		return
	}

	ident, _ := auth.CurrentIdentity(c)
	if !auth.OwnerOrAdmin(ident, bootcamp.UserID) {
		httpx.Error(c, http.StatusForbidden, "not authorized to add a course to this bootcamp")
		return
	}

	var body courseDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	course := Course{
		Title:                body.Title,
		Description:          body.Description,
		Weeks:                body.Weeks,
		Tuition:              body.Tuition,
		MinimumSkill:         body.MinimumSkill,
		ScholarshipAvailable: body.ScholarshipAvailable,
		BootcampID:           bootcamp.ID,
		UserID:               ident.ID,
	}
	if err := h.db.Create(&course).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	if err := recomputeAverageCost(h.db, bootcamp.ID); err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, course)
}

func (h *Handler) Update(c *gin.Context) {
	course, ok := h.fetch(c)
	if !ok {
		return
	}
	ident, _ := auth.CurrentIdentity(c)
	if !auth.OwnerOrAdmin(ident, course.UserID) {
		httpx.Error(c, http.StatusForbidden, "not authorized to update this course")
		return
	}

	var body courseDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	course.Title = body.Title
	course.Description = body.Description
	course.Weeks = body.Weeks
	course.Tuition = body.Tuition
	course.MinimumSkill = body.MinimumSkill
	course.ScholarshipAvailable = body.ScholarshipAvailable

	if err := h.db.Save(course).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	if err := recomputeAverageCost(h.db, course.BootcampID); err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, course)
}

func (h *Handler) Delete(c *gin.Context) {
	course, ok := h.fetch(c)
	if !ok {
		return
	}
	ident, _ := auth.CurrentIdentity(c)
	if !auth.OwnerOrAdmin(ident, course.UserID) {
		httpx.Error(c, http.StatusForbidden, "not authorized to delete this course")
		return
	}
	if err := h.db.Delete(course).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	if err := recomputeAverageCost(h.db, course.BootcampID); err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, gin.H{})
}

func (h *Handler) fetch(c *gin.Context) (*Course, bool) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	var course Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(c, http.StatusNotFound, fmt.Sprintf("course not found with id of %d", id))
			return nil, false
		}
		httpx.InternalError(c, err)
		return nil, false
	}
	return &course, true
}

// recomputeAverageCost refreshes the bootcamp's average tuition after any
// course mutation.
func recomputeAverageCost(db *gorm.DB, bootcampID uint) error {
	var avg float64
	err := db.Model(&Course{}).
		Where("bootcamp_id = ?", bootcampID).
		Select("COALESCE(AVG(tuition), 0)").
		Scan(&avg).Error
	if err != nil {
		return err
	}
	return db.Model(&bootcamps.Bootcamp{}).
		Where("id = ?", bootcampID).
		Update("average_cost", avg).Error
}
