package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tvbridge/adb"
	"tvbridge/api"
	"tvbridge/config"
	"tvbridge/service"
)

// setupLogging creates a log file in the log directory with timestamp
// Returns the log file handle (caller should defer Close())
func setupLogging(logDir string) (*os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log file with timestamp: log/2025-12-08_21-52-35.log
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, timestamp+".log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Write to both console and file
	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	gin.DefaultWriter = multiWriter

	log.Printf("📝 Logging to: %s", logPath)
	return logFile, nil
}

func main() {
	configPath := os.Getenv("TVBRIDGE_CONFIG")
	if configPath == "" {
		configPath = "tvbridge.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Printf("Warning: Failed to setup file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting Android TV Remote Bridge...")

	db, err := config.InitDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize command journal: %v", err)
	}
	defer db.Close()

	adbClient := adb.NewADBClient(adb.Options{
		Path:           cfg.ADBPath,
		CommandTimeout: cfg.CommandTimeout.Duration,
		ProbeTimeout:   cfg.ProbeTimeout.Duration,
	})

	wsHub := api.NewWebSocketHub()
	go wsHub.Run()

	deviceManager := service.NewDeviceManager(adbClient, cfg.PreferredDevice)
	journal := service.NewJournal(db, cfg.HistorySize)
	actionDispatcher := service.NewActionDispatcher(deviceManager, adbClient).
		WithJournal(journal).
		WithBroadcaster(wsHub)

	router := gin.Default()
	api.SetupRoutes(router, &api.Services{
		Config:        cfg,
		DeviceManager: deviceManager,
		Dispatcher:    actionDispatcher,
		Journal:       journal,
		Hub:           wsHub,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	localIP := service.LocalIP()
	log.Printf("✓ Server running on http://%s:%d", localIP, cfg.Port)
	log.Printf("✓ Local access: http://127.0.0.1:%d", cfg.Port)
	log.Printf("✓ Remote channel: ws://%s:%d/ws", localIP, cfg.Port)
	if version, err := adbClient.Version(context.Background()); err != nil {
		log.Printf("Warning: %v (install platform-tools or set TVBRIDGE_ADB_PATH)", err)
	} else {
		log.Printf("✓ %s", version)
	}
	log.Println("✓ Ready to receive remote control commands!")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down the server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
