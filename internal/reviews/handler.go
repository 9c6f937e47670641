package reviews

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

// Handler exposes the review endpoints.
type Handler struct {
	db *gorm.DB
}

// NewHandler creates the review handler.
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes mounts the review routes. Publishers cannot review; only
// regular users and admins may.
func (h *Handler) RegisterRoutes(r *gin.Engine, protect gin.HandlerFunc) {
	review := auth.RequireRoles(users.RoleUser, users.RoleAdmin)

	g := r.Group("/api/v1/reviews")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", protect, review, h.Update)
	g.DELETE("/:id", protect, review, h.Delete)

	nested := r.Group("/api/v1/bootcamps/:id/reviews")
	nested.GET("", h.ListByBootcamp)
	nested.POST("", protect, review, h.Create)
}

func (h *Handler) List(c *gin.Context) {
	var list []Review
	if err := h.db.Find(&list).Error; err != nil {
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
	var list []Review
	if err := h.db.Where("bootcamp_id = ?", bootcampID).Find(&list).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

func (h *Handler) Get(c *gin.Context) {
	review, ok := h.fetch(c)
	if !ok {
		return
	}
	httpx.OK(c, http.StatusOK, review)
}

type reviewDTO struct {
	Title  string `json:"title" binding:"required"`
	Text   string `json:"text" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=10"`
}

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

	var body reviewDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ident, _ := auth.CurrentIdentity(c)
	review := Review{
		Title:      body.Title,
		Text:       body.Text,
		Rating:     body.Rating,
		BootcampID: bootcamp.ID,
		UserID:     ident.ID,
	}
	if err := h.db.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.Error(c, http.StatusBadRequest, "you have already reviewed this bootcamp")
			return
		}
		httpx.InternalError(c, err)
		return
	}
	if err := recomputeAverageRating(h.db, bootcamp.ID); err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, review)
}

func (h *Handler) Update(c *gin.Context) {
	review, ok := h.fetch(c)
	if !ok {
		return
	}
	ident, _ := auth.CurrentIdentity(c)
	if !auth.OwnerOrAdmin(ident, review.UserID) {
		httpx.Error(c, http.StatusForbidden, "not authorized to update this review")
		return
	}

	var body reviewDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	review.Title = body.Title
	review.Text = body.Text
	review.Rating = body.Rating

	if err := h.db.Save(review).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	if err := recomputeAverageRating(h.db, review.BootcampID); err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, review)
}

func (h *Handler) Delete(c *gin.Context) {
	review, ok := h.fetch(c)
	if !ok {
		return
	}
	ident, _ := auth.CurrentIdentity(c)
	if !auth.OwnerOrAdmin(ident, review.UserID) {
		httpx.Error(c, http.StatusForbidden, "not authorized to delete this review")
		return
	}
	if err := h.db.Delete(review).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	if err := recomputeAverageRating(h.db, review.BootcampID); err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, gin.H{})
}

func (h *Handler) fetch(c *gin.Context) (*Review, bool) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	var review Review
	if err := h.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(c, http.StatusNotFound, fmt.Sprintf("review not found with id of %d", id))
			return nil, false
		}
		httpx.InternalError(c, err)
		return nil, false
	}
	return &review, true
}

// recomputeAverageRating refreshes the bootcamp's average rating after any
// review mutation.
func recomputeAverageRating(db *gorm.DB, bootcampID uint) error {
	var avg float64
	err := db.Model(&Review{}).
		Where("bootcamp_id = ?", bootcampID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	if err != nil {
		return err
	}
	return db.Model(&bootcamps.Bootcamp{}).
		Where("id = ?", bootcampID).
		Update("average_rating", avg).Error
}
