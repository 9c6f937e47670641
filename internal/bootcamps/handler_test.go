package bootcamps

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
	"github.com/mjaffal21/devcamper-api/internal/geocoder"
	"github.com/mjaffal21/devcamper-api/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubGeocoder returns a fixed location without touching the network.
type stubGeocoder struct{}

func (stubGeocoder) Geocode(string) (geocoder.Location, error) {
	return geocoder.Location{Lat: 42.35, Lng: -71.06}, nil
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&users.User{}, &Bootcamp{}))
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	tokens := auth.NewTokenService("test-secret-key-at-least-32-chars-long", time.Hour)
	r := gin.New()
	h := NewHandler(db, stubGeocoder{}, t.TempDir(), 1<<20)
	h.RegisterRoutes(r, auth.RequireAuth(tokens, users.NewStore(db)))
	return r
}

// seedUser inserts a user and returns its id and a session token.
func seedUser(t *testing.T, db *gorm.DB, email, role string) (uint, string) {
	t.Helper()
	user := users.User{Name: "T", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	tokens := auth.NewTokenService("test-secret-key-at-least-32-chars-long", time.Hour)
	token, err := tokens.Issue(user.ID)
	require.NoError(t, err)
	return user.ID, token
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

func seedBootcamp(t *testing.T, db *gorm.DB, name string, ownerID uint) *Bootcamp {
	t.Helper()
	b := Bootcamp{
		Name:        name,
		Slug:        slugify(name),
		Description: "desc",
		Address:     "1 Main St",
		Careers:     []string{"Web Development"},
		UserID:      ownerID,
	}
	require.NoError(t, db.Create(&b).Error)
	return &b
}

const bootcampBody = `{"name":"%s","description":"desc","address":"1 Main St","careers":["Web Development"]}`

func TestBootcampOwnership(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	ownerID, ownerToken := seedUser(t, db, "owner@x.com", users.RolePublisher)
	_, otherToken := seedUser(t, db, "other@x.com", users.RolePublisher)
	_, adminToken := seedUser(t, db, "admin@x.com", users.RoleAdmin)
	b := seedBootcamp(t, db, "Devworks", ownerID)
	path := fmt.Sprintf("/api/v1/bootcamps/%d", b.ID)

	// A publisher who does not own the bootcamp cannot mutate it.
	w := doAuthJSON(r, http.MethodPut, path, otherToken, fmt.Sprintf(bootcampBody, "Hijacked"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doAuthJSON(r, http.MethodDelete, path, otherToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner can.
	w = doAuthJSON(r, http.MethodPut, path, ownerToken, fmt.Sprintf(bootcampBody, "Devworks v2"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"devworks-v2"`)

	// Admins bypass ownership.
	w = doAuthJSON(r, http.MethodDelete, path, adminToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&Bootcamp{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestBootcampNotFoundBeforeOwnership(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	_, pubToken := seedUser(t, db, "pub@x.com", users.RolePublisher)
	_, adminToken := seedUser(t, db, "admin@x.com", users.RoleAdmin)

	// A missing bootcamp is 404 for every role, never 403.
	for _, token := range []string{pubToken, adminToken} {
		w := doAuthJSON(r, http.MethodPut, "/api/v1/bootcamps/9999", token,
			fmt.Sprintf(bootcampBody, "Ghost"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = doAuthJSON(r, http.MethodDelete, "/api/v1/bootcamps/9999", token, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestBootcampPublishLimit(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	_, pubToken := seedUser(t, db, "pub@x.com", users.RolePublisher)
	_, adminToken := seedUser(t, db, "admin@x.com", users.RoleAdmin)

	w := doAuthJSON(r, http.MethodPost, "/api/v1/bootcamps", pubToken,
		fmt.Sprintf(bootcampBody, "First Camp"))
	require.Equal(t, http.StatusCreated, w.Code)

	// A publisher may only own one bootcamp.
	w = doAuthJSON(r, http.MethodPost, "/api/v1/bootcamps", pubToken,
		fmt.Sprintf(bootcampBody, "Second Camp"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already published")

	// Admins are exempt from the limit.
	for _, name := range []string{"Admin Camp A", "Admin Camp B"} {
		w = doAuthJSON(r, http.MethodPost, "/api/v1/bootcamps", adminToken,
			fmt.Sprintf(bootcampBody, name))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestBootcampCreateUnauthenticated(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	_, userToken := seedUser(t, db, "user@x.com", users.RoleUser)

	w := doAuthJSON(r, http.MethodPost, "/api/v1/bootcamps", "",
		fmt.Sprintf(bootcampBody, "Anon Camp"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Regular users cannot publish.
	w = doAuthJSON(r, http.MethodPost, "/api/v1/bootcamps", userToken,
		fmt.Sprintf(bootcampBody, "User Camp"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBootcampListSelect(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	ownerID, _ := seedUser(t, db, "owner@x.com", users.RolePublisher)
	seedBootcamp(t, db, "Devworks", ownerID)

	w := doAuthJSON(r, http.MethodGet, "/api/v1/bootcamps?select=name,slug", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"name":"Devworks"`)
	assert.Contains(t, body, `"slug":"devworks"`)
	// Unselected columns come back zero-valued.
	assert.Contains(t, body, `"description":""`)

	// Unknown fields are dropped from the projection, not passed to the
	// database.
	w = doAuthJSON(r, http.MethodGet, "/api/v1/bootcamps?select=name,no_such_column", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Devworks"`)
}

func TestBootcampListCareersFilter(t *testing.T) {
	db := setupDB(t)
	r := newTestRouter(t, db)
	ownerID, _ := seedUser(t, db, "owner@x.com", users.RolePublisher)
	seedBootcamp(t, db, "Devworks", ownerID)

	w := doAuthJSON(r, http.MethodGet, "/api/v1/bootcamps?careers=Web+Development", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	// LIKE wildcards in the value are literal-stripped, not interpreted.
	for _, q := range []string{"careers=W_b", "careers=%25Marketing%25"} {
		w = doAuthJSON(r, http.MethodGet, "/api/v1/bootcamps?"+q, "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":0`, "query %s", q)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Devworks Bootcamp", "devworks-bootcamp"},
		{"  ModernTech  ", "moderntech"},
		{"Full-Stack 101", "full-stack-101"},
		{"Café & Code!", "caf-code"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}
