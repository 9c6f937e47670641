package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mjaffal21/devcamper-api/internal/auth"
	"github.com/mjaffal21/devcamper-api/internal/bootcamps"
	"github.com/mjaffal21/devcamper-api/internal/config"
	"github.com/mjaffal21/devcamper-api/internal/courses"
	"github.com/mjaffal21/devcamper-api/internal/database"
	"github.com/mjaffal21/devcamper-api/internal/geocoder"
	"github.com/mjaffal21/devcamper-api/internal/mailer"
	"github.com/mjaffal21/devcamper-api/internal/reviews"
	"github.com/mjaffal21/devcamper-api/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded, continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	if m := os.Getenv("GIN_MODE"); m != "" {
		gin.SetMode(m)
	} else if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db,
		&users.User{},
		&bootcamps.Bootcamp{},
		&courses.Course{},
		&reviews.Review{},
	); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	store := users.NewStore(db)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpire)
	smtp := mailer.NewSMTP(cfg)
	authService := auth.NewService(store, smtp, tokens, cfg.ResetTokenExpire)
	cookies := auth.NewCookieWriter(cfg.JWTCookieExpire, cfg.Production())
	geo := geocoder.NewClient(cfg.GeocoderAPIKey)

	protect := auth.RequireAuth(tokens, store)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth.NewHandler(authService, cookies).RegisterRoutes(r)
	users.NewHandler(db, store, auth.HashPassword).
		RegisterRoutes(r, protect, auth.RequireRoles(users.RoleAdmin))
	bootcamps.NewHandler(db, geo, cfg.FileUploadPath, cfg.MaxFileUpload).RegisterRoutes(r, protect)
	courses.NewHandler(db).RegisterRoutes(r, protect)
	reviews.NewHandler(db).RegisterRoutes(r, protect)

	log.Printf("server running in %s mode on port %s", cfg.Env, cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
