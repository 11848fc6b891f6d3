package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/acadlab/equipment-loan-engine/internal/config"
	"github.com/acadlab/equipment-loan-engine/internal/handler"
	"github.com/acadlab/equipment-loan-engine/internal/notify"
	"github.com/acadlab/equipment-loan-engine/internal/photo"
	"github.com/acadlab/equipment-loan-engine/internal/repository"
	"github.com/acadlab/equipment-loan-engine/internal/service"
	"github.com/acadlab/equipment-loan-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize photo storage
	photoStore, err := photo.NewDiskStore(cfg.Photo.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize photo store: %v", err)
	}

	sink := notify.NewRedisSink(redisClient, cfg.Redis.EventChannel)

	// Initialize repositories
	equipmentRepo := repository.NewEquipmentRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	conditionRepo := repository.NewConditionRepository(db)
	damageRepo := repository.NewDamageRepository(db)
	penaltyRepo := repository.NewPenaltyRepository(db)

	// Initialize services
	equipmentService := service.NewEquipmentService(equipmentRepo, damageRepo, sink)
	conditionService := service.NewConditionService(conditionRepo, photoStore, cfg.Business.MinObservationLen)
	damageService := service.NewDamageService(damageRepo, equipmentRepo, photoStore, sink)
	penaltyService := service.NewPenaltyService(penaltyRepo, cfg.GetPenaltyRules(), cfg.Business.AutoApplyPenalties, sink)
	loanService := service.NewLoanService(loanRepo, equipmentRepo, conditionService, penaltyService, sink)
	reportingService := service.NewReportingService(loanRepo, equipmentRepo)

	// Initialize handlers
	equipmentHandler := handler.NewEquipmentHandler(equipmentService)
	loanHandler := handler.NewLoanHandler(loanService)
	damageHandler := handler.NewDamageHandler(damageService)
	penaltyHandler := handler.NewPenaltyHandler(penaltyService)
	reportHandler := handler.NewReportHandler(reportingService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(equipmentHandler, loanHandler, damageHandler, penaltyHandler, reportHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	equipmentHandler *handler.EquipmentHandler,
	loanHandler *handler.LoanHandler,
	damageHandler *handler.DamageHandler,
	penaltyHandler *handler.PenaltyHandler,
	reportHandler *handler.ReportHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes; every operation requires a caller identity
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handler.Identity)

	api.HandleFunc("/equipment", equipmentHandler.Register).Methods("POST")
	api.HandleFunc("/equipment", equipmentHandler.List).Methods("GET")
	api.HandleFunc("/equipment/{id}", equipmentHandler.Get).Methods("GET")
	api.HandleFunc("/equipment/{id}/status", equipmentHandler.SetStatus).Methods("PUT")
	api.HandleFunc("/equipment/{id}/loanability", equipmentHandler.SetLoanability).Methods("PUT")

	api.HandleFunc("/loans", loanHandler.Create).Methods("POST")
	api.HandleFunc("/loans", loanHandler.List).Methods("GET")
	api.HandleFunc("/loans/{id}", loanHandler.Get).Methods("GET")
	api.HandleFunc("/loans/{id}/approve", loanHandler.Approve).Methods("POST")
	api.HandleFunc("/loans/{id}/reject", loanHandler.Reject).Methods("POST")
	api.HandleFunc("/loans/{id}/cancel", loanHandler.Cancel).Methods("POST")
	api.HandleFunc("/loans/{id}/handoff", loanHandler.RecordHandoff).Methods("POST")
	api.HandleFunc("/loans/{id}/return", loanHandler.RecordReturn).Methods("POST")

	api.HandleFunc("/damage-reports", damageHandler.Report).Methods("POST")
	api.HandleFunc("/damage-reports", damageHandler.List).Methods("GET")
	api.HandleFunc("/damage-reports/{id}/resolve", damageHandler.Resolve).Methods("POST")

	api.HandleFunc("/penalties", penaltyHandler.List).Methods("GET")
	api.HandleFunc("/penalties/{id}/cancel", penaltyHandler.Cancel).Methods("POST")

	api.HandleFunc("/reports/usage", reportHandler.Usage).Methods("GET")

	return router
}
