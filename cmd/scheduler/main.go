package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/acadlab/equipment-loan-engine/internal/config"
	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/internal/notify"
	"github.com/acadlab/equipment-loan-engine/internal/repository"
	"github.com/acadlab/equipment-loan-engine/internal/service"
)

func main() {
	log.Println("Starting loan engine scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	sink := notify.NewRedisSink(redisClient, cfg.Redis.EventChannel)

	penaltyService := service.NewPenaltyService(
		repository.NewPenaltyRepository(db),
		cfg.GetPenaltyRules(),
		cfg.Business.AutoApplyPenalties,
		sink,
	)
	loanRepo := repository.NewLoanRepository(db)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Schedule tasks
	setupCronJobs(c, penaltyService, loanRepo, sink)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, penalties *service.PenaltyService, loanRepo repository.LoanRepository, sink notify.Sink) {
	// Daily job to complete expired penalties (runs at midnight)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		completeExpiredPenalties(penalties)
	})
	if err != nil {
		log.Printf("Error scheduling penalty expiry job: %v", err)
	}

	// Daily job to flag overdue loans (runs at 6 AM)
	_, err = c.AddFunc("0 0 6 * * *", func() {
		flagOverdueLoans(loanRepo, sink)
	})
	if err != nil {
		log.Printf("Error scheduling overdue loan job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

func completeExpiredPenalties(penalties *service.PenaltyService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	count, err := penalties.CompleteExpired(ctx, time.Now())
	if err != nil {
		log.Printf("Penalty expiry job failed: %v", err)
		return
	}

	log.Printf("Penalty expiry job completed, %d penalties closed", count)
}

func flagOverdueLoans(loanRepo repository.LoanRepository, sink notify.Sink) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	loans, err := loanRepo.ListOverdue(ctx, time.Now())
	if err != nil {
		log.Printf("Overdue loan job failed: %v", err)
		return
	}

	for _, loan := range loans {
		event := domain.NewEvent(domain.EventLoanOverdue, loan.ID.String(), map[string]any{
			"equipment_id": loan.EquipmentID.String(),
			"borrower_id":  loan.BorrowerID,
			"end_date":     loan.EndDate,
		})
		if err := sink.Publish(ctx, event); err != nil {
			log.Printf("Overdue event dropped for loan %s: %v", loan.ID, err)
		}
	}

	log.Printf("Overdue loan job completed, %d loans flagged", len(loans))
}
