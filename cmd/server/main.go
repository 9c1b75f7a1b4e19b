package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aasl/gate-duty-backend/internal/config"
	"github.com/aasl/gate-duty-backend/internal/database"
	"github.com/aasl/gate-duty-backend/internal/handlers"
	"github.com/aasl/gate-duty-backend/internal/services"
	"github.com/aasl/gate-duty-backend/internal/utils"
	"github.com/aasl/gate-duty-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting AASL Gate Duty Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize repositories and services
	logger.Info("Initializing services...")
	staffRepository := database.NewStaffRepository(db)
	scheduleRepository := database.NewScheduleRepository(db)
	scheduleRunRepository := database.NewScheduleRunRepository(db)
	monthValidator := validator.NewMonthValidator()

	scheduleService := services.NewScheduleService(
		db,
		staffRepository,
		scheduleRepository,
		scheduleRunRepository,
	)

	// Initialize cron service for monthly auto-generation
	cronService := services.NewCronService(scheduleService)
	if cfg.Schedule.AutoGenerate {
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		logger.Info("✓ Cron service started - Monthly schedule auto-generation enabled")
	} else {
		logger.Info("Schedule auto-generation disabled (SCHEDULE_AUTO_GENERATE=false)")
	}

	logger.Info("Services initialized")

	// Initialize handlers
	staffHandler := handlers.NewStaffHandler(staffRepository)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, monthValidator)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Schedule.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Service identity endpoint
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "AASL Gate Duty Backend",
			"version": version,
			"status":  "running",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Debug endpoint - shows all request headers and IP detection (public)
		v1.GET("/debug/headers", debugHeadersHandler())

		// Debug endpoint - list all registered routes
		v1.GET("/debug/routes", func(c *gin.Context) {
			routes := router.Routes()
			routeList := make([]map[string]string, 0)
			for _, route := range routes {
				routeList = append(routeList, map[string]string{
					"method": route.Method,
					"path":   route.Path,
				})
			}
			c.JSON(200, gin.H{
				"message":      "Registered routes",
				"total_routes": len(routeList),
				"routes":       routeList,
			})
		})

		// Staff roster routes
		v1.POST("/staff", staffHandler.UpsertStaff)
		v1.GET("/staffs", staffHandler.ListStaff)

		// Schedule routes
		v1.POST("/schedule", scheduleHandler.GenerateSchedule)
		v1.GET("/schedule/:month", scheduleHandler.GetMonthSchedule)
		v1.POST("/reset-priority", scheduleHandler.ResetPriorities)
		v1.POST("/delete-month", scheduleHandler.DeleteMonthSchedule)
		v1.GET("/schedule-runs", scheduleHandler.ListScheduleRuns)

		// Admin cron management routes
		admin := v1.Group("/admin")
		{
			admin.POST("/cron/run-schedule", func(c *gin.Context) {
				cronService.RunGenerateScheduleNow()
				c.JSON(200, gin.H{"message": "Schedule generation triggered"})
			})

			admin.GET("/cron/status", func(c *gin.Context) {
				status := cronService.GetJobStatus()
				c.JSON(200, status)
			})
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop cron service
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Log incoming request
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         utils.GetRealIP(c),
			"user_agent": c.Request.UserAgent(),
		}).Info("Incoming request")

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		// Build log entry with basic fields
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         utils.GetRealIP(c),
			"latency_ms": latency.Milliseconds(),
		}

		// Add parsed device information
		device := utils.ParseUserAgent(utils.GetUserAgent(c))
		fields["device_type"] = device.DeviceType
		fields["os"] = device.OS
		fields["browser"] = device.Browser
		if device.IsBot {
			fields["is_bot"] = true
		}

		entry := logger.WithFields(fields)

		// Log errors with more details
		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
				if err.Meta != nil {
					entry = entry.WithField(fmt.Sprintf("error_%d_meta", i), err.Meta)
				}
			}
			entry.Error("Request failed with errors")
		} else {
			// Log based on status code
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check database connection
		dbStatus := "healthy"
		if err := db.Ping(); err != nil {
			dbStatus = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": dbStatus,
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

// debugHeadersHandler shows all request headers for debugging IP issues
func debugHeadersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Collect all headers
		headers := make(map[string]string)
		for name, values := range c.Request.Header {
			headers[name] = values[0] // Take first value
		}

		realIP := utils.GetRealIP(c)

		c.JSON(http.StatusOK, gin.H{
			"message": "Debug information for IP detection",
			"headers": headers,
			"ip_detection": gin.H{
				"real_ip":           realIP,
				"ip_info":           utils.GetIPInfo(realIP),
				"gin_clientip":      c.ClientIP(),
				"remote_addr":       c.Request.RemoteAddr,
				"x_real_ip":         c.Request.Header.Get("X-Real-IP"),
				"x_forwarded_for":   c.Request.Header.Get("X-Forwarded-For"),
				"x_forwarded_proto": c.Request.Header.Get("X-Forwarded-Proto"),
			},
			"device":     utils.ParseUserAgent(utils.GetUserAgent(c)),
			"user_agent": c.Request.UserAgent(),
			"timestamp":  time.Now().Unix(),
		})
	}
}
