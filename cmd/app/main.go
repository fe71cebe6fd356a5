package main

import (
	"EyelidService/internal/config"
	"EyelidService/pkg/log"
	websocketPkg "EyelidService/pkg/websocket"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn(log.Fields{"error": err.Error()}, "No .env file loaded, using process environment")
	}
	logger := log.NewLogger()

	appConfig := config.LoadAppConfig()
	fiberApp := config.NewFiber(logger, appConfig)
	validator := config.NewValidator()

	detector, err := websocketPkg.NewEyeDetectorClient(logger, websocketPkg.DetectorConfig{
		URL:        appConfig.DetectorURL,
		Timeout:    appConfig.DetectorTimeout,
		Confidence: websocketPkg.ConfidenceThreshold,
	})
	if err != nil {
		log.Error(log.Fields{
			"error": err.Error(),
			"url":   appConfig.DetectorURL,
		}, "Eye detector could not be loaded, analysis requests will be rejected")
	}

	server, err := config.NewServer(
		config.WithAppConfig(appConfig),
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithUtils(),
		config.WithMiddleware(),
		config.WithEyeDetector(detector),
		config.WithOverlayRenderer(),
	)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Failed to build server")
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	log.Info(log.Fields{"port": appConfig.Port}, "Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
