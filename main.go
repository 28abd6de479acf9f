package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-wa-dispatch/src/infrastructure/di"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/rest/middlewares"
	"go-wa-dispatch/src/infrastructure/rest/routes"
	"go-wa-dispatch/src/infrastructure/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: utils.GetEnv("SERVER_PORT", "8080"),
	}
}

func main() {
	dotenvErr := godotenv.Load()

	env := utils.GetEnv("GO_ENV", "development")
	var loggerInstance *logger.Logger
	var err error

	if env == "development" {
		loggerInstance, err = logger.NewDevelopmentLogger()
	} else {
		loggerInstance, err = logger.NewLogger()
	}
	if err != nil {
		panic(fmt.Errorf("error initializing logger: %w", err))
	}
	zap.ReplaceGlobals(loggerInstance.Log)
	defer func() {
		_ = loggerInstance.Log.Sync()
	}()

	if dotenvErr != nil && !errors.Is(dotenvErr, os.ErrNotExist) {
		loggerInstance.Warn("Couldn't load .env file", zap.Error(dotenvErr))
	}
	loggerInstance.Info("Starting go-wa-dispatch", zap.String("env", env))

	serverConfig := loadServerConfig()

	appContext, err := di.SetupDependencies(loggerInstance)
	if err != nil {
		loggerInstance.Fatal("Error initializing application context", zap.Error(err))
	}

	router := setupRouter(appContext, loggerInstance, env)
	server := setupServer(router, serverConfig.Port)

	go func() {
		loggerInstance.Info("Server starting", zap.String("port", serverConfig.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// The coordinator starts from the transport's ready event.
	if err := appContext.WhatsApp.Connect(context.Background()); err != nil {
		loggerInstance.Fatal("Error connecting to WhatsApp", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	loggerInstance.Info("Shutdown signal received", zap.String("signal", sig.String()))

	appContext.Coordinator.Shutdown()
	appContext.WhatsApp.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		loggerInstance.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appContext.Alerts.Flush(2 * time.Second)
	loggerInstance.Info("Shutdown complete")
}

func setupRouter(appContext *di.ApplicationContext, loggerInstance *logger.Logger, env string) *gin.Engine {
	if env == "development" {
		logger.SetupGinWithZapLoggerInDevelopment()
	} else {
		logger.SetupGinWithZapLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	// request logging wraps ErrorHandler so the final status is logged
	router.Use(loggerInstance.GinZapLogger())
	router.Use(middlewares.ErrorHandler())

	routes.ApplicationRouter(router, appContext)
	return router
}

func setupServer(router *gin.Engine, port string) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
