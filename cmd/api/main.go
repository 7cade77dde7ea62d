package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/aryaseptiaw/giglink_be/internal/auth"
	"github.com/aryaseptiaw/giglink_be/internal/cache"
	"github.com/aryaseptiaw/giglink_be/internal/config"
	"github.com/aryaseptiaw/giglink_be/internal/db"
	"github.com/aryaseptiaw/giglink_be/internal/handlers"
	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/models"
	"github.com/aryaseptiaw/giglink_be/internal/services/engagement"
	"github.com/aryaseptiaw/giglink_be/internal/services/jobs"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := cache.NewRedis()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Println("Redis unreachable, session cache disabled:", err)
		rdb = nil
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Job{},
		&models.Proposal{},
		&models.Contract{},
		&models.Permission{},
		&models.SavedJob{},
	); err != nil {
		log.Fatal(err)
	}

	handlers.ExposeInternalErrors(!cfg.IsProduction())

	sessions := auth.NewSessionStore(gdb, rdb, cfg.SessionTTL)
	jobSvc := jobs.NewService(gdb)
	engagementSvc := engagement.NewService(gdb)

	authH := handlers.NewAuthHandler(gdb, sessions, cfg)
	googleH := handlers.NewGoogleOAuthHandler(gdb, sessions, cfg)
	jobH := handlers.NewJobHandler(jobSvc)
	proposalH := handlers.NewProposalHandler(engagementSvc)
	contractH := handlers.NewContractHandler(engagementSvc)
	savedH := handlers.NewSavedJobHandler(gdb)
	adminH := handlers.NewAdminHandler(gdb)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/forgot-password", authH.ForgotPassword)
	api.Post("/auth/reset-password", authH.ResetPassword)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/jobs", jobH.ListActive)
	api.Get("/jobs/:id", jobH.Get)

	// protected (server-side session)
	protected := api.Group("/", middleware.Session(sessions))

	protected.Post("/auth/logout", authH.Logout)
	protected.Get("/auth/me", authH.Me)

	// client only
	protected.Post("/jobs",
		middleware.RequireRoles("client"),
		jobH.Create,
	)
	protected.Get("/client/jobs",
		middleware.RequireRoles("client"),
		jobH.ListMine,
	)
	protected.Patch("/jobs/:id/close",
		middleware.RequireRoles("client", "admin"),
		jobH.Close,
	)
	protected.Get("/jobs/:id/proposals",
		middleware.RequireRoles("client", "admin"),
		proposalH.ListForJob,
	)
	protected.Patch("/proposals/:id/status",
		middleware.RequireRoles("client"),
		proposalH.UpdateStatus,
	)

	// freelancer only
	protected.Post("/proposals",
		middleware.RequireRoles("freelancer"),
		proposalH.Create,
	)
	protected.Get("/proposals/me",
		middleware.RequireRoles("freelancer"),
		proposalH.ListMine,
	)
	protected.Post("/saved-jobs",
		middleware.RequireRoles("freelancer"),
		savedH.Save,
	)
	protected.Get("/saved-jobs",
		middleware.RequireRoles("freelancer"),
		savedH.List,
	)
	protected.Delete("/saved-jobs/:jobId",
		middleware.RequireRoles("freelancer"),
		savedH.Delete,
	)

	// contracts: any authenticated party, filtered by role inside
	protected.Get("/contracts", contractH.List)
	protected.Get("/contracts/:id", contractH.Get)
	protected.Patch("/contracts/:id/status", contractH.UpdateStatus)

	// admin / support staff
	protected.Get("/admin/users",
		middleware.RequirePermission(gdb, "users.read", ""),
		adminH.ListUsers,
	)
	protected.Post("/admin/permissions",
		middleware.RequireRoles("admin"),
		adminH.GrantPermission,
	)

	startSessionSweeper(sessions)

	log.Fatal(app.Listen(":" + cfg.AppPort))
}

// startSessionSweeper purges expired session rows hourly. Validation already
// rejects them lazily; this only bounds table growth.
func startSessionSweeper(sessions *auth.SessionStore) {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for range ticker.C {
			n, err := sessions.PurgeExpired(context.Background())
			if err != nil {
				log.Println("[SessionSweeper] purge failed:", err)
				continue
			}
			if n > 0 {
				log.Printf("[SessionSweeper] purged %d expired sessions", n)
			}
		}
	}()
}
