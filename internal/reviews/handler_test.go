package reviews

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mjaffal21/devcamper-api/internal/auth"
	"github.com/mjaffal21/devcamper-api/internal/bootcamps"
	"github.com/mjaffal21/devcamper-api/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&users.User{}, &bootcamps.Bootcamp{}, &Review{}))
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	tokens := auth.NewTokenService("test-secret-key-at-least-32-chars-long", time.Hour)
	r := gin.New()
	NewHandler(db).RegisterRoutes(r, auth.RequireAuth(tokens, users.NewStore(db)))
	return r
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) (uint, string) {
	t.Helper()
	user := users.User{Name: "T", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	tokens := auth.NewTokenService("test-secret-key-at-least-32-chars-long", time.Hour)
	token, err := tokens.Issue(user.ID)
	require.NoError(t, err)
	return user.ID, token
}

func seedBootcamp(t *testing.T, db *gorm.DB, ownerID uint) *bootcamps.Bootcamp {
	t.Helper()
	b := bootcamps.Bootcamp{
		Name:        "Devworks",
		Slug:        "devworks",
		Description: "desc",
		Address:     "1 Main St",
		Careers:     []string{"Web Development"},
		UserID:      ownerID,
	}
	require.NoError(t, db.Create(&b).Error)
	return &b
}

func doAuthJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

const reviewBody = `{"title":"%s","text":"text","rating":%d}`

func averageRating(t *testing.T, db *gorm.DB, bootcampID uint) float64 {
	t.Helper()
	var b bootcamps.Bootcamp
	require.NoError(t, db.First(&b, bootcampID).Error)
	return b.AverageRating
}

func TestReviewCreateMissingBootcamp(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	_, userToken := seedUser(t, db, "user@x.com", users.RoleUser)

	w := doAuthJSON(r, http.MethodPost, "/api/v1/bootcamps/9999/reviews", userToken,
		fmt.Sprintf(reviewBody, "Great", 8))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewPublisherCannotReview(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	ownerID, ownerToken := seedUser(t, db, "owner@x.com", users.RolePublisher)
	b := seedBootcamp(t, db, ownerID)

	w := doAuthJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/bootcamps/%d/reviews", b.ID),
		ownerToken, fmt.Sprintf(reviewBody, "Self praise", 10))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReviewOwnershipAndAverages(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	ownerID, _ := seedUser(t, db, "owner@x.com", users.RolePublisher)
	_, userToken := seedUser(t, db, "user@x.com", users.RoleUser)
	_, otherToken := seedUser(t, db, "other@x.com", users.RoleUser)
	_, adminToken := seedUser(t, db, "admin@x.com", users.RoleAdmin)
	b := seedBootcamp(t, db, ownerID)

	w := doAuthJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/bootcamps/%d/reviews", b.ID),
		userToken, fmt.Sprintf(reviewBody, "Great", 8))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.InDelta(t, 8.0, averageRating(t, db, b.ID), 0.001)

	var review Review
	require.NoError(t, db.Where("bootcamp_id = ?", b.ID).First(&review).Error)
	path := fmt.Sprintf("/api/v1/reviews/%d", review.ID)

	// Another user cannot touch the review; its author can.
	w = doAuthJSON(r, http.MethodPut, path, otherToken, fmt.Sprintf(reviewBody, "Meh", 2))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doAuthJSON(r, http.MethodPut, path, userToken, fmt.Sprintf(reviewBody, "Revised", 4))
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 4.0, averageRating(t, db, b.ID), 0.001)

	// Admins bypass ownership; the aggregate resets with the last review gone.
	w = doAuthJSON(r, http.MethodDelete, path, adminToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 0.0, averageRating(t, db, b.ID), 0.001)

	// A missing review is 404 regardless of role.
	w = doAuthJSON(r, http.MethodDelete, path, adminToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
