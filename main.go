package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"learnhub/actions"
	"learnhub/config"
	authController "learnhub/controllers/auth"
	courseController "learnhub/controllers/course"
	"learnhub/database"
	"learnhub/events"
	authRoutes "learnhub/routers/authRoutes"
	courseRoutes "learnhub/routers/courseRoutes"
	"learnhub/search"
	"learnhub/storage"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.LoadConfig()
	db := database.ConnectDb(cfg).Db

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mailer := utils.NewEmailService(cfg)

	opts := []actions.Option{actions.WithDefaultLanguage(cfg.DefaultLanguage)}

	// Events go through Kafka when brokers are configured, otherwise mail is sent inline
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		opts = append(opts, actions.WithPublisher(publisher))

		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, "learnhub-mailer", mailer)
		go consumer.Run(ctx)
	} else {
		opts = append(opts, actions.WithPublisher(events.Inline{Mailer: mailer}))
	}

	var index *search.CourseIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUsername, cfg.ESPassword)
		if err != nil {
			log.Fatalf("Failed to create Elasticsearch client: %v", err)
		}
		index = search.New(es)
		opts = append(opts, actions.WithIndexer(index))
	}

	if cfg.MinioEndpoint != "" {
		store, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		opts = append(opts, actions.WithObjectStore(store))
	} else {
		opts = append(opts, actions.WithObjectStore(storage.NewLocalStore(cfg.UploadDir)))
	}

	if cfg.PdfRenderURL != "" {
		opts = append(opts, actions.WithRenderer(utils.NewPDFRenderer(cfg.PdfRenderURL)))
	}

	var throttle utils.OTPThrottle = utils.NewMemoryThrottle(utils.OTPCooldown)
	if cfg.RedisURL != "" {
		rdb := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
		defer rdb.Close()
		throttle = utils.NewRedisThrottle(rdb, utils.OTPCooldown)
	}

	acts := actions.New(db, opts...)

	if index != nil {
		go func() {
			n, err := index.Reindex(ctx, db)
			if err != nil {
				log.Printf("[SEARCH] reindex failed: %v", err)
				return
			}
			log.Printf("[SEARCH] indexed %d published courses", n)
		}()
	}

	if cfg.SchedulerEnabled {
		c := utils.InitializeSchedulers(db, acts)
		defer c.Stop()
	}

	app := fiber.New(fiber.Config{
		// uploads carry videos up to 200MB
		BodyLimit: 210 << 20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Locally stored uploads
	app.Static("/uploads", cfg.UploadDir)

	authRoutes.SetupAuthRoutes(app, authController.New(db, cfg, utils.NewSMSGateway(cfg), mailer, throttle), cfg.JWTKey)
	courses := courseController.New(acts)
	courseRoutes.SetupInstructorRoutes(app, courses, db, cfg.JWTKey)
	courseRoutes.SetupCourseRoutes(app, courses, cfg.JWTKey)

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
