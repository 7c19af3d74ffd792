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

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/auth"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/config"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/database"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/handlers"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/services"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	jobService := services.NewJobService(db)
	matcherService := services.NewMatcherService(db)

	llmService, err := services.NewLLMService(ctx, cfg)
	if err != nil {
		log.Printf("AI features disabled: %v", err)
	}

	gmailService := connectGmail(ctx, cfg)

	// A nil *LLMService must not become a non-nil interface
	var analyzer services.EmailAnalyzer
	if llmService != nil {
		analyzer = llmService
	}
	emailService := services.NewEmailService(db, analyzer, gmailService, matcherService, jobService, cfg.EmailPollInterval)
	emailService.StartWatcher(ctx)

	jobHandler := handlers.NewJobHandler(llmService, jobService)
	router := handlers.NewRouter(jobHandler, cfg.CORSAllowOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// connectGmail returns nil when Gmail is not set up; the watcher then
// stays off.
func connectGmail(ctx context.Context, cfg *config.Config) *gmail.Service {
	if _, err := os.Stat(cfg.GmailCredentialsFile); err != nil {
		log.Printf("Gmail credentials %s not found, email watcher disabled", cfg.GmailCredentialsFile)
		return nil
	}

	log.Println("Initializing Gmail Client...")
	httpClient, err := auth.GetGmailClient(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile, os.Stdin, os.Stdout)
	if err != nil {
		log.Printf("Gmail auth failed: %v", err)
		return nil
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		log.Printf("Failed to create Gmail Service: %v", err)
		return nil
	}
	log.Println("Gmail Service connected successfully.")
	return svc
}
