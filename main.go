package main

import (
	"log"

	"github.com/geniusacademy/registration-service/config"
	"github.com/geniusacademy/registration-service/internal/commerce"
	"github.com/geniusacademy/registration-service/internal/consumer"
	"github.com/geniusacademy/registration-service/internal/handler"
	"github.com/geniusacademy/registration-service/internal/mailer"
	"github.com/geniusacademy/registration-service/internal/middleware"
	"github.com/geniusacademy/registration-service/internal/repository"
	"github.com/geniusacademy/registration-service/internal/service"
	"github.com/geniusacademy/registration-service/pkg/database"
	"github.com/geniusacademy/registration-service/pkg/rabbitmq"
	"github.com/geniusacademy/registration-service/pkg/signature"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// Repositories
	classRepo := repository.NewClassRepository(db)
	regRepo := repository.NewRegistrationRepository(db)

	// Collaborators
	sigStore := signature.NewStore(cfg.SignatureDir, cfg.PublicBaseURL)
	gateway := commerce.NewClient(cfg.CommerceBaseURL, cfg.CommerceAPIKey)
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, cfg.Recipients())
	nonces := service.NewNonceService(cfg.NonceSecret, cfg.NonceTTL)

	// Services
	inventorySvc := service.NewInventoryService(classRepo)
	codes := service.NewOrderCodeGenerator(regRepo.CodeExists)
	regSvc := service.NewRegistrationService(regRepo, inventorySvc, codes, sigStore, gateway, mail)

	// RabbitMQ consumer: sync order status changes from the commerce system
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	orderConsumer := consumer.NewOrderConsumer(regSvc)
	orderConsumer.Start(msgs)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "registration-service"})
	})
	e.Static("/signatures", cfg.SignatureDir)

	handler.NewRegistrationHandler(regSvc, nonces).RegisterRoutes(e)
	handler.NewClassHandler(inventorySvc).RegisterRoutes(e)

	log.Printf("Registration Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
