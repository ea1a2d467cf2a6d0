package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/expense-portal/api"
	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/apiclient"
	"github.com/frahmantamala/expense-portal/internal/approval"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
	"github.com/frahmantamala/expense-portal/internal/submission"
	"github.com/frahmantamala/expense-portal/internal/transport"
	"github.com/frahmantamala/expense-portal/internal/transport/rest"
	"github.com/frahmantamala/expense-portal/internal/ui"
	"github.com/frahmantamala/expense-portal/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the expense screens`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	API    *apiclient.CachedClient
	Issuer *auth.TokenIssuer
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Configure(logger.Options{
		Env:    config.Server.Env,
		Level:  config.Observability.Logging.Level,
		Format: config.Observability.Logging.Format,
	})

	deps, err := NewDependencies(context.Background(), config, log)
	if err != nil {
		log.Error("Failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", config.Server.Port)
	log.Info("Starting HTTP server", "address", addr, "expense_api", config.API.BaseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: config.Server.ReadHeaderTimeout,
		ReadTimeout:       config.Server.ReadTimeout,
		WriteTimeout:      config.Server.WriteTimeout,
		IdleTimeout:       config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Server stopped")
}

// NewDependencies wires the API client, both screens and the router.
func NewDependencies(ctx context.Context, config *internal.Config, log *slog.Logger) (*Dependencies, error) {
	loc, err := config.UI.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve timezone: %w", err)
	}

	var contract *apiclient.Contract
	if config.API.ValidateResponses {
		contract, err = apiclient.LoadContract(ctx, api.Spec)
		if err != nil {
			return nil, err
		}
	}

	client := apiclient.WithUserCache(apiclient.NewClient(apiclient.Config{
		BaseURL:  config.API.BaseURL,
		Timeout:  config.API.Timeout,
		Contract: contract,
	}, log), config.API.UserCacheTTL)

	renderer, err := ui.NewRenderer(loc, config.UI.CurrencyCode())
	if err != nil {
		return nil, err
	}

	bus := notify.NewBus(log)
	bus.Subscribe(notify.LogHandler(log), notify.LevelSuccess, notify.LevelError)

	secureCookies := config.Server.Env == "production"
	base := transport.NewBaseHandler(log, renderer, transport.NewFlash(secureCookies, log))
	issuer := auth.NewTokenIssuer(config.Security.SessionSecret, config.Security.TokenTTL)

	handlers := rest.Handlers{
		Base:       base,
		Pages:      rest.NewPagesHandler(base),
		Health:     rest.NewHealthHandler(base, client),
		Session:    rest.NewSessionHandler(base, issuer, config.Security.CookieName(), secureCookies),
		Submission: submission.NewHandler(base, submission.NewSubmitter(client, log), submission.NewDatePicker(loc), config.UI.CurrencyCode(), bus),
		Approval:   approval.NewHandler(base, client, bus),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.Session{
		Parser:     issuer,
		CookieName: config.Security.CookieName(),
	}, log)

	return &Dependencies{
		Config: config,
		API:    client,
		Issuer: issuer,
		Router: router,
		Logger: log,
	}, nil
}
