package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "backoffice/internal/config"
	"backoffice/internal/events"
	router "backoffice/internal/http"
	"backoffice/internal/http/handlers"
	"backoffice/internal/prefs"
	"backoffice/internal/repositories"
	"backoffice/internal/seatmap"
	"backoffice/internal/selection"
	"backoffice/internal/services"
	"backoffice/internal/upstream"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	intconfig.ConnectDB()
	defer intconfig.CloseDB()

	booking := upstream.NewClient(env.UpstreamBaseURL, env.UpstreamTimeout)
	store := seatmap.NewStore(booking)
	selections := selection.NewManager()

	preferences := prefs.NewStore(env.RedisAddr, env.RedisPassword, env.RedisDB)
	defer preferences.Close()

	audit := events.NewProducer(env.KafkaBrokers, env.KafkaTopic)
	defer audit.Close()

	queueRepo := repositories.WaitingQueueRepo{}
	receiptRepo := repositories.ReceiptRepo{}
	expenseRepo := repositories.ExpenseRepo{}

	assigner := &services.AssignmentService{
		Upstream:  booking,
		Store:     store,
		Selection: selections,
		Queue:     queueRepo,
		Receipts:  receiptRepo,
		Events:    audit,
	}
	releaser := &services.ReleaseService{
		Upstream:  booking,
		Store:     store,
		Selection: selections,
		Queue:     queueRepo,
		Events:    audit,
	}

	api := handlers.API{
		Store:     store,
		Selection: selections,
		Assign:    assigner,
		Release:   releaser,
		Queue:     services.QueueService{Repo: queueRepo, Assigner: assigner},
		Receipts:  services.ReceiptService{},
		Fares:     services.FareService{},
		Closing:   services.ClosingService{Receipts: receiptRepo, Expenses: expenseRepo},
		Expenses:  expenseRepo,
		Prefs:     preferences,
		JWTSecret: env.JWTSecret,
	}

	r := router.NewRouter(env, api)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("gateway listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly.")
}
