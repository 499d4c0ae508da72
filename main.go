package main

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/faturamento/backend/src/config"
	"github.com/username/faturamento/backend/src/database"
	"github.com/username/faturamento/backend/src/handlers"
	"github.com/username/faturamento/backend/src/logger"
	"github.com/username/faturamento/backend/src/processors"
	"github.com/username/faturamento/backend/src/security"
	"github.com/username/faturamento/backend/src/services"
	"github.com/username/faturamento/backend/src/utils"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var (
	limiter      = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)
	loginLimiter = rate.NewLimiter(rate.Every(2*time.Second), 5)
)

func rateLimitMiddleware(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				utils.SendJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				logger.FromContext(r.Context()).Warn("Rate limit exceeded", "path", r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enableCORS(allowed []string) func(http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedOrigins[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowedOrigins[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
				w.Header().Set("Access-Control-Expose-Headers", "ETag, Content-Disposition, X-Request-ID")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hashPasswordCommand prints the bcrypt hash for OPERATOR_PASSWORD_HASH.
func hashPasswordCommand(password string) {
	hash, err := (&security.AuthService{}).HashPassword(password)
	if err != nil {
		stdlog.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(hash)
}

func main() {
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		hashPasswordCommand(os.Args[2])
		return
	}

	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Faturamento backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)

	reportCache := services.NewReportCache(config.Cfg.CacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(
		config.Cfg.JWTSecret,
		config.Cfg.OperatorUsername,
		config.Cfg.OperatorPasswordHash,
		config.Cfg.AccessTokenExpiry,
	)

	ingestionProcessor := processors.NewIngestionProcessor()
	revenueProcessor := processors.NewRevenueProcessor()
	analyticsProcessor := processors.NewAnalyticsProcessor()
	returnsProcessor := processors.NewReturnsProcessor(analyticsProcessor)

	datasetStore := services.NewDatasetStore(config.Cfg.DatasetPath)
	cutoffStore := services.NewCutoffStore(config.Cfg.CutoffPath, database.DB)
	if _, err := cutoffStore.Load(); err != nil {
		logger.L.Error("Failed to initialize cutoff store", "path", config.Cfg.CutoffPath, "error", err)
	}

	uploadService := services.NewUploadService(ingestionProcessor, datasetStore, database.DB, reportCache)
	dashboardService := services.NewDashboardService(
		datasetStore,
		cutoffStore,
		revenueProcessor,
		analyticsProcessor,
		returnsProcessor,
		reportCache,
	)

	authHandler := handlers.NewAuthHandler(authService)
	uploadHandler := handlers.NewUploadHandler(uploadService, config.Cfg.MaxUploadSizeBytes)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, config.Cfg.DefaultEmployees)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS(config.Cfg.AllowedOrigins))
	r.Use(rateLimitMiddleware(limiter))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Faturamento Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.With(rateLimitMiddleware(loginLimiter)).Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authHandler.AuthMiddleware)

			r.Post("/upload", uploadHandler.HandleUpload)
			r.Get("/uploads", uploadHandler.HandleListUploads)
			r.Get("/dataset/info", dashboardHandler.HandleDatasetInfo)

			r.Get("/revenue", dashboardHandler.HandleNetRevenue)
			r.Get("/cutoff", dashboardHandler.HandleGetCutoff)
			r.Put("/cutoff", dashboardHandler.HandlePutCutoff)

			r.Get("/dashboard", dashboardHandler.HandleDashboard)
			r.Get("/brands/{brand}/top-skus", dashboardHandler.HandleBrandTopSKUs)
			r.Get("/brands/{brand}/abc", dashboardHandler.HandleABCCurve)
			r.Get("/returns", dashboardHandler.HandleReturns)

			r.Get("/export/revenue.xlsx", dashboardHandler.HandleExportRevenue)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			utils.SendJSONError(w, "Not found", http.StatusNotFound)
			return
		}
		http.NotFound(w, r)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
