package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/handlers"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	job "github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/publisher"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/scheduler"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/pkg/ratelimit"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	r2Service := service.NewR2Service(*cfg)
	accountService := service.NewAccountService(*cfg, accountRepo)
	postService := service.NewPostService(postRepo, scheduleRepo, accountRepo)
	mediaService := service.NewMediaService(*cfg, r2Service)

	postScheduler := scheduler.New(postRepo, scheduleRepo, cfg.Posting)
	pub := publisher.New(postRepo, scheduleRepo, accountService, mediaService, cfg.Publisher, cfg.Posting)
	generationLimiter := ratelimit.NewLimiter(cfg.LimiterDelay)

	// Log every account in before the loop starts picking up due posts.
	active, total := accountService.LoginAll(context.Background())
	log.Printf("Auto login finished: %d/%d accounts active", active, total)

	pub.Start()

	sessionRefreshJob := job.NewSessionRefreshJob(accountRepo, accountService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", sessionRefreshJob.RefreshSessions)
	c.Start()
	defer c.Stop()

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/login", auth.Login)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, pub)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)
	api.Post("/posts/:id/publish-now", post.PublishNow)

	schedule := handlers.NewScheduleHandler(postScheduler)
	api.Post("/schedule/assign", schedule.Assign)
	api.Get("/schedule/:account_id", schedule.Calendar)

	account := handlers.NewAccountHandler(accountService)
	api.Get("/accounts", account.ListAccounts)
	api.Post("/accounts", account.CreateAccount)
	api.Delete("/accounts/:id", account.RemoveAccount)
	api.Post("/accounts/:id/login", account.Login)
	api.Post("/accounts/:id/logout", account.Logout)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)
	api.Get("/media/photos", media.ListPhotos)
	api.Get("/media/videos", media.ListVideos)

	pubHandler := handlers.NewPublisherHandler(pub, generationLimiter)
	api.Get("/publisher/status", pubHandler.Status)
	api.Get("/limiter/stats", pubHandler.LimiterStats)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app, pub, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, pub *publisher.Publisher, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	pub.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
