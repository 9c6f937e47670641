package bootcamps

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mjaffal21/devcamper-api/internal/auth"
	"github.com/mjaffal21/devcamper-api/internal/geocoder"
	"github.com/mjaffal21/devcamper-api/internal/httpx"
	"github.com/mjaffal21/devcamper-api/internal/users"
)

// earthRadiusMiles converts a distance in miles to radians for the
// great-circle filter.
const earthRadiusMiles = 3963.0

// Geocoder resolves an address or zipcode to coordinates.
type Geocoder interface {
	Geocode(location string) (geocoder.Location, error)
}

// Handler exposes the bootcamp endpoints.
type Handler struct {
	db         *gorm.DB
	geo        Geocoder
	uploadPath string
	maxUpload  int64
}

// NewHandler creates the bootcamp handler.
func NewHandler(db *gorm.DB, geo Geocoder, uploadPath string, maxUpload int64) *Handler {
	return &Handler{db: db, geo: geo, uploadPath: uploadPath, maxUpload: maxUpload}
}

// RegisterRoutes mounts the bootcamp routes. protect resolves the identity;
// mutating routes additionally require the publisher or admin role, with
// ownership checked in the handler after the resource is fetched.
func (h *Handler) RegisterRoutes(r *gin.Engine, protect gin.HandlerFunc) {
	publish := auth.RequireRoles(users.RolePublisher, users.RoleAdmin)

	g := r.Group("/api/v1/bootcamps")
	g.GET("", h.List)
	g.POST("", protect, publish, h.Create)
	g.GET("/radius/:zipcode/:distance", h.InRadius)
	g.GET("/:id", h.Get)
	g.PUT("/:id", protect, publish, h.Update)
	g.DELETE("/:id", protect, publish, h.Delete)
	g.PUT("/:id/photo", protect, publish, h.UploadPhoto)
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	sort := c.DefaultQuery("sort", "id")
	order := c.DefaultQuery("order", "asc")
	allowedSorts := map[string]bool{
		"id": true, "name": true, "average_rating": true, "average_cost": true, "created_at": true,
	}
	if !allowedSorts[sort] {
		sort = "id"
	}
	if order != "asc" && order != "desc" {
		order = "asc"
	}

	query := h.db.Model(&Bootcamp{})
	if careers := c.Query("careers"); careers != "" {
		// JSON-serialized column; containment check on the serialized text.
		// LIKE wildcards are stripped from the user-supplied value.
		careers = strings.NewReplacer("%", "", "_", "").Replace(careers)
		query = query.Where("careers LIKE ?", "%"+careers+"%")
	}
	if housing := c.Query("housing"); housing != "" {
		query = query.Where("housing = ?", housing == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}

	finder := query.Order(sort + " " + order).Offset((page - 1) * limit).Limit(limit)
	if cols := selectedColumns(c.Query("select")); len(cols) > 0 {
		finder = finder.Select(cols)
	}

	var list []Bootcamp
	if err := finder.Find(&list).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": total, "page": page, "data": list})
}

func (h *Handler) Get(c *gin.Context) {
	bootcamp, ok := h.fetch(c)
	if !ok {
		return
	}
	httpx.OK(c, http.StatusOK, bootcamp)
}

type bootcampDTO struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Website       string   `json:"website" binding:"omitempty,url"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address" binding:"required"`
	Careers       []string `json:"careers" binding:"required"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"job_assistance"`
	JobGuarantee  bool     `json:"job_guarantee"`
	AcceptGi      bool     `json:"accept_gi"`
}

func (h *Handler) Create(c *gin.Context) {
	var body bootcampDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	ident, _ := auth.CurrentIdentity(c)

	// Publishers may only own one bootcamp; admins are exempt.
	if !ident.IsAdmin() {
		var count int64
		if err := h.db.Model(&Bootcamp{}).Where("user_id = ?", ident.ID).Count(&count).Error; err != nil {
			httpx.InternalError(c, err)
			return
		}
		if count > 0 {
			httpx.Error(c, http.StatusBadRequest, "user has already published a bootcamp")
			return
		}
	}

	bootcamp := Bootcamp{
		Name:          body.Name,
		Slug:          slugify(body.Name),
		Description:   body.Description,
		Website:       body.Website,
		Phone:         body.Phone,
		Email:         body.Email,
		Address:       body.Address,
		Careers:       body.Careers,
		Housing:       body.Housing,
		JobAssistance: body.JobAssistance,
		JobGuarantee:  body.JobGuarantee,
		AcceptGi:      body.AcceptGi,
		UserID:        ident.ID,
	}

	// Address geocoding is best-effort: a provider outage should not block
	// publishing, it only disables radius search for this record.
	if loc, err := h.geo.Geocode(body.Address); err == nil {
		bootcamp.Lat = loc.Lat
		bootcamp.Lng = loc.Lng
	}

	if err := h.db.Create(&bootcamp).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.Error(c, http.StatusBadRequest, "bootcamp name already exists")
			return
		}
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusCreated, bootcamp)
}

func (h *Handler) Update(c *gin.Context) {
	bootcamp, ok := h.fetch(c)
	if !ok {
		return
	}
	ident, _ := auth.CurrentIdentity(c)
	if !auth.OwnerOrAdmin(ident, bootcamp.UserID) {
		httpx.Error(c, http.StatusForbidden, "not authorized to update this bootcamp")
		return
	}

	var body bootcampDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	bootcamp.Name = body.Name
	bootcamp.Slug = slugify(body.Name)
	bootcamp.Description = body.Description
	bootcamp.Website = body.Website
	bootcamp.Phone = body.Phone
	bootcamp.Email = body.Email
	bootcamp.Careers = body.Careers
	bootcamp.Housing = body.Housing
	bootcamp.JobAssistance = body.JobAssistance
	bootcamp.JobGuarantee = body.JobGuarantee
	bootcamp.AcceptGi = body.AcceptGi
	if body.Address != bootcamp.Address {
		bootcamp.Address = body.Address
		if loc, err := h.geo.Geocode(body.Address); err == nil {
			bootcamp.Lat = loc.Lat
			bootcamp.Lng = loc.Lng
		}
	}

	if err := h.db.Save(bootcamp).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.Error(c, http.StatusBadRequest, "bootcamp name already exists")
			return
		}
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, bootcamp)
}

func (h *Handler) Delete(c *gin.Context) {
	bootcamp, ok := h.fetch(c)
	if !ok {
		return
	}
	ident, _ := auth.CurrentIdentity(c)
	if !auth.OwnerOrAdmin(ident, bootcamp.UserID) {
		httpx.Error(c, http.StatusForbidden, "not authorized to delete this bootcamp")
		return
	}
	// Courses and reviews cascade via their foreign keys.
	if err := h.db.Delete(bootcamp).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, gin.H{})
}

// InRadius returns bootcamps within :distance miles of :zipcode.
func (h *Handler) InRadius(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil || distance <= 0 {
		httpx.Error(c, http.StatusBadRequest, "invalid distance")
		return
	}

	loc, err := h.geo.Geocode(c.Param("zipcode"))
	if err != nil {
		if errors.Is(err, geocoder.ErrNoResult) {
			httpx.Error(c, http.StatusBadRequest, "could not geocode zipcode")
			return
		}
		httpx.InternalError(c, err)
		return
	}

	// Haversine distance in miles, filtered in SQL.
	var list []Bootcamp
	err = h.db.Where(
		"(? * acos( least(1.0, cos(radians(?)) * cos(radians(lat)) * cos(radians(lng) - radians(?)) + sin(radians(?)) * sin(radians(lat)) ))) <= ?",
		earthRadiusMiles, loc.Lat, loc.Lng, loc.Lat, distance,
	).Find(&list).Error
	if err != nil {
		httpx.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
}

// UploadPhoto stores an image for the bootcamp and records its filename.
func (h *Handler) UploadPhoto(c *gin.Context) {
	bootcamp, ok := h.fetch(c)
	if !ok {
		return
	}
	ident, _ := auth.CurrentIdentity(c)
	if !auth.OwnerOrAdmin(ident, bootcamp.UserID) {
		httpx.Error(c, http.StatusForbidden, "not authorized to update this bootcamp")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		httpx.Error(c, http.StatusBadRequest, "please upload a file")
		return
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image") {
		httpx.Error(c, http.StatusBadRequest, "please upload an image file")
		return
	}
	if file.Size > h.maxUpload {
		httpx.Error(c, http.StatusBadRequest,
			fmt.Sprintf("please upload an image less than %d bytes", h.maxUpload))
		return
	}

	name := fmt.Sprintf("photo_%d_%s%s", bootcamp.ID, uuid.NewString(), filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadPath, name)); err != nil {
		httpx.InternalError(c, err)
		return
	}

	if err := h.db.Model(bootcamp).Update("photo", name).Error; err != nil {
		httpx.InternalError(c, err)
		return
	}
	httpx.OK(c, http.StatusOK, name)
}

// fetch loads the bootcamp from the :id param, responding 400/404 itself.
// Existence is always reported before ownership.
func (h *Handler) fetch(c *gin.Context) (*Bootcamp, bool) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	var bootcamp Bootcamp
	if err := h.db.First(&bootcamp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(c, http.StatusNotFound, fmt.Sprintf("bootcamp not found with id of %d", id))
			return nil, false
		}
		httpx.InternalError(c, err)
		return nil, false
	}
	return &bootcamp, true
}

// selectableColumns is the allowlist for the ?select= projection.
var selectableColumns = map[string]bool{
	"id": true, "name": true, "slug": true, "description": true, "website": true,
	"phone": true, "email": true, "address": true, "lat": true, "lng": true,
	"careers": true, "photo": true, "housing": true, "job_assistance": true,
	"job_guarantee": true, "accept_gi": true, "average_rating": true,
	"average_cost": true, "user_id": true, "created_at": true,
}

// selectedColumns parses a comma-separated ?select= value against the
// allowlist. An empty result means no projection.
func selectedColumns(raw string) []string {
	if raw == "" {
		return nil
	}
	var cols []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); selectableColumns[f] {
			cols = append(cols, f)
		}
	}
	return cols
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
