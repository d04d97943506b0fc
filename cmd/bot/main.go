package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/sheet-bot/internal/clients/sheets"
	"github.com/KirkDiggler/sheet-bot/internal/config"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/handlers"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/middleware"
	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/routers"
	"github.com/KirkDiggler/sheet-bot/internal/metrics"
	"github.com/KirkDiggler/sheet-bot/internal/repositories/claims"
	"github.com/KirkDiggler/sheet-bot/internal/services"
	"github.com/KirkDiggler/sheet-bot/internal/uuid"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Application ID: %s", cfg.Discord.AppID)
	if cfg.Discord.GuildID != "" {
		log.Printf("Guild ID: %s", cfg.Discord.GuildID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	tokens, err := sheets.NewServiceAccountTokenSource(ctx, cfg.Sheets.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to load Google credentials: %v", err)
	}

	retry := sheets.DefaultBackoffConfig()
	retry.MaxElapsedTime = cfg.Sheets.RetryMaxElapsed
	retry.MaxRetries = cfg.Sheets.RetryMaxAttempts

	sheetsClient, err := sheets.New(&sheets.Config{
		HttpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		TokenSource: tokens,
		NewDelegate: sheets.BackoffDelegateFactory(retry),
	})
	if err != nil {
		log.Fatalf("Failed to create sheets client: %v", err)
	}

	claimRepo, cleanup, err := openClaims(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open claims store: %v", err)
	}
	defer cleanup()

	provider := services.NewProvider(&services.ProviderConfig{
		SheetsClient:    sheetsClient,
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		RowLimit:        cfg.Sheets.RowLimit,
		ClaimRepository: claimRepo,
	})

	collector := metrics.NewCollector()

	errorConfig := middleware.DefaultErrorConfig()
	errorConfig.EmbedTitle = "Something went wrong"

	pipeline := core.NewPipeline()
	pipeline.Use(
		middleware.RecoveryMiddleware(),
		middleware.RequestIDMiddleware(uuid.NewGoogleUUIDGenerator()),
		middleware.LoggingMiddleware(middleware.DefaultLogConfig()),
		middleware.MetricsMiddleware(collector),
		middleware.ErrorMiddleware(errorConfig),
		middleware.UserRateLimitMiddleware(20, time.Minute),
		middleware.SmartDeferMiddleware(),
	)

	sheetHandler, err := handlers.NewSheetHandler(&handlers.SheetHandlerConfig{
		RollService: provider.RollService,
		Claims:      provider.Claims,
	})
	if err != nil {
		log.Fatalf("Failed to create sheet handler: %v", err)
	}
	routers.NewSheetRouter(pipeline, sheetHandler)

	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if err := pipeline.Execute(ctx, s, i); err != nil {
			log.Printf("[Bot] Failed to handle interaction %s: %v", i.ID, err)
		}
	})

	if err := dg.Open(); err != nil {
		log.Printf("Failed to open Discord connection: %v", err)
		return
	}
	defer func() {
		if closeErr := dg.Close(); closeErr != nil {
			log.Printf("Failed to close Discord connection: %v", closeErr)
		}
	}()

	for _, cmd := range handlers.Commands() {
		if _, err := dg.ApplicationCommandCreate(cfg.Discord.AppID, cfg.Discord.GuildID, cmd); err != nil {
			log.Printf("Failed to register command %s: %v", cmd.Name, err)
			return
		}
	}

	if cfg.Discord.GuildID != "" {
		log.Printf("Registered commands for guild: %s", cfg.Discord.GuildID)
	} else {
		log.Println("Registered global commands (may take up to 1 hour to propagate)")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("Serving metrics on %s", cfg.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()
	fmt.Println("Shutting down...")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Failed to stop metrics server: %v", err)
		}
	}
}

// openClaims picks Redis when REDIS_URL is set and reachable, SQLite otherwise
func openClaims(ctx context.Context, cfg *config.Config) (claims.Repository, func(), error) {
	if cfg.Redis.URL != "" {
		log.Printf("Connecting to Redis at: %s", cfg.Redis.URL)

		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Printf("Failed to parse Redis URL: %v", err)
			log.Println("Falling back to SQLite claims store")
		} else {
			client := redis.NewClient(opts)

			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := client.Ping(pingCtx).Err()
			cancel()

			if pingErr == nil {
				log.Println("Using Redis for claims")
				return claims.NewRedis(client), func() {
					if err := client.Close(); err != nil {
						log.Printf("Error closing Redis connection: %v", err)
					}
				}, nil
			}

			log.Printf("Failed to connect to Redis: %v", pingErr)
			log.Println("Falling back to SQLite claims store")
			_ = client.Close()
		}
	}

	repo, err := claims.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Using SQLite claims store at %s", cfg.Store.Path)

	return repo, func() {
		if err := repo.Close(); err != nil {
			log.Printf("Error closing claims store: %v", err)
		}
	}, nil
}
