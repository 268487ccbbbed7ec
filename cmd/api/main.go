package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/workhive/workhive_be/internal/config"
	"github.com/workhive/workhive_be/internal/db"
	"github.com/workhive/workhive_be/internal/handlers"
	"github.com/workhive/workhive_be/internal/middleware"
	"github.com/workhive/workhive_be/internal/models"
	"github.com/workhive/workhive_be/internal/notifications"
	"github.com/workhive/workhive_be/internal/realtime"
	"github.com/workhive/workhive_be/internal/services/bids"
	"github.com/workhive/workhive_be/internal/services/earnings"
	"github.com/workhive/workhive_be/internal/services/projects"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.FreelancerProfile{},
		&models.Project{},
		&models.Bid{},
		&models.Earning{},
		&models.Message{},
		&models.Notification{},
		&models.Review{},
	); err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis not reachable:", err)
	}

	hub := realtime.NewHub()
	go realtime.RunBridge(context.Background(), rdb, hub)

	templates := notifications.NewTemplateStore()
	notifier := notifications.NewNotifier(gdb, hub, rdb, templates)

	earningsSvc := earnings.NewService(gdb)
	projectSvc := projects.NewService(gdb, earningsSvc, notifier)
	bidSvc := bids.NewService(gdb, notifier)

	authH := &handlers.AuthHandler{DB: gdb, JWTSecret: cfg.JWTSecret, Expires: cfg.JWTExpiresMin}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	projectH := handlers.NewProjectHandler(gdb, projectSvc)
	bidH := handlers.NewBidHandler(gdb, bidSvc)
	earningsH := handlers.NewEarningsHandler(gdb, earningsSvc)
	messageH := handlers.NewMessageHandler(gdb, notifier)
	reviewH := handlers.NewReviewHandler(gdb, notifier)
	verificationH := handlers.NewVerificationHandler(gdb, notifier)
	notificationH := handlers.NewNotificationHandler(gdb, templates)
	adminH := handlers.NewAdminHandler(gdb)
	wsH := handlers.NewWSHandler(hub, cfg.JWTSecret)

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
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/projects", projectH.List)
	api.Get("/projects/:id", projectH.Get)
	api.Get("/freelancers/:id/reviews", reviewH.ListForFreelancer)

	// protected (JWT)
	protected := api.Group("/", middleware.JWTAuth(cfg.JWTSecret))

	protected.Get("/me", authH.Me)

	// projects (client)
	protected.Post("/projects",
		middleware.RequireRoles("client"),
		projectH.Create,
	)
	protected.Put("/projects/:id",
		middleware.RequireRoles("client"),
		projectH.Update,
	)
	protected.Delete("/projects/:id",
		middleware.RequireRoles("client"),
		projectH.Delete,
	)
	protected.Patch("/projects/:id/status",
		middleware.RequireRoles("client"),
		projectH.Transition,
	)
	protected.Patch("/projects/:id/progress",
		middleware.RequireRoles("freelancer"),
		projectH.Progress,
	)

	// bids
	protected.Post("/projects/:id/bids",
		middleware.RequireRoles("freelancer"),
		bidH.Submit,
	)
	protected.Get("/projects/:id/bids", bidH.ListForProject)
	protected.Get("/bids/mine",
		middleware.RequireRoles("freelancer"),
		bidH.ListMine,
	)
	protected.Patch("/bids/:id/status",
		middleware.RequireRoles("client"),
		bidH.UpdateStatus,
	)
	protected.Post("/bids/:id/counter",
		middleware.RequireRoles("client"),
		bidH.Counter,
	)
	protected.Post("/bids/:id/counter/accept",
		middleware.RequireRoles("freelancer"),
		bidH.AcceptCounter,
	)
	protected.Delete("/bids/:id",
		middleware.RequireRoles("freelancer"),
		bidH.Withdraw,
	)

	// earnings (freelancer)
	earningsGrp := protected.Group("/earnings", middleware.RequireRoles("freelancer"))
	earningsGrp.Get("/", earningsH.List)
	earningsGrp.Get("/summary", earningsH.Summary)
	earningsGrp.Post("/sync", earningsH.Sync)

	// messages
	protected.Get("/projects/:id/messages", messageH.List)
	protected.Post("/projects/:id/messages", messageH.Send)
	protected.Patch("/projects/:id/messages/read", messageH.MarkRead)
	protected.Get("/messages/unread", messageH.UnreadCount)

	// reviews
	protected.Post("/projects/:id/reviews",
		middleware.RequireRoles("client"),
		reviewH.Create,
	)

	// verification (freelancer)
	verif := protected.Group("/freelancer/verification", middleware.RequireRoles("freelancer"))
	verif.Get("/", verificationH.Get)
	verif.Patch("/profile", verificationH.UpdateProfile)
	verif.Patch("/identity", verificationH.UpdateIdentity)
	verif.Post("/submit", verificationH.Submit)

	// notifications
	protected.Get("/notifications", notificationH.List)
	protected.Patch("/notifications/:id/read", notificationH.MarkRead)

	// admin
	admin := protected.Group("/admin", middleware.RequireRoles("admin"))
	admin.Get("/stats", adminH.Stats)
	admin.Get("/top-earners", adminH.TopEarners)
	admin.Get("/users", adminH.Users)
	admin.Patch("/users/:id/active", adminH.SetUserActive)
	admin.Get("/verifications", verificationH.ListPending)
	admin.Patch("/verifications/:id", verificationH.Review)
	admin.Get("/notification-templates", notificationH.ListTemplates)
	admin.Put("/notification-templates/:event", notificationH.UpdateTemplate)

	// websocket (token auth via query param)
	app.Get("/ws", websocket.New(wsH.Handle))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
