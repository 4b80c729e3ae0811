package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gasonil/storefront/internal/cep"
	"github.com/gasonil/storefront/internal/handlers"
	"github.com/gasonil/storefront/internal/platform/config"
	"github.com/gasonil/storefront/internal/platform/observability"
	"github.com/gasonil/storefront/internal/repositories/memory"
	"github.com/gasonil/storefront/internal/services"
	"github.com/gasonil/storefront/internal/session"
)

func main() {
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	store := memory.NewSessionStore()

	lookupClient := cep.NewClient(cep.ClientDeps{
		BaseURL: cfg.Lookup.BaseURL,
		HTTPClient: &http.Client{
			Timeout: cfg.Lookup.Timeout,
		},
		Logger: logger.Named("cep"),
	})

	eventLogger := logger.Named("session")
	sessionService, err := services.NewSessionService(services.SessionServiceDeps{
		Repository: store,
		Clock:      time.Now,
		TTL:        cfg.Session.TTL,
		FocusDelay: time.Duration(cfg.Session.FocusDelayMilli) * time.Millisecond,
		Observer: func(event session.Event) {
			eventLogger.Debug("session event",
				zap.String("session_id", event.SessionID),
				zap.String("type", string(event.Type)),
				zap.String("address_status", string(event.Status)),
				zap.String("dialog", string(event.Dialog)),
			)
		},
	})
	if err != nil {
		logger.Fatal("failed to initialise session service", zap.Error(err))
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Sessions: sessionService,
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	addressService, err := services.NewAddressService(services.AddressServiceDeps{
		Sessions: sessionService,
		Lookup:   lookupClient,
	})
	if err != nil {
		logger.Fatal("failed to initialise address service", zap.Error(err))
	}

	paymentService, err := services.NewPaymentService(services.PaymentServiceDeps{
		Sessions: sessionService,
	})
	if err != nil {
		logger.Fatal("failed to initialise payment service", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Sessions: sessionService,
		Phone:    cfg.Checkout.Phone,
		Logger:   logger.Named("checkout"),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	var sweepWG sync.WaitGroup
	var sweepTicker *time.Ticker
	if cfg.Session.SweepInterval > 0 {
		sweepTicker = time.NewTicker(cfg.Session.SweepInterval)
		sweepWG.Add(1)
		go func() {
			defer sweepWG.Done()
			sweepLogger := logger.Named("sweep")
			for {
				select {
				case <-sweepTicker.C:
					removed, err := sessionService.SweepExpired(sweepCtx)
					if err != nil {
						sweepLogger.Error("session sweep error", zap.Error(err))
						continue
					}
					if removed > 0 {
						sweepLogger.Info("expired sessions removed", zap.Int("count", removed))
					}
				case <-sweepCtx.Done():
					return
				}
			}
		}()
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthStartedAt(startedAt),
		handlers.WithHealthCheck("session_store", func(context.Context) error {
			if store == nil {
				return errors.New("session store not configured")
			}
			return nil
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithSessionRoutes(handlers.ComposeSessionRoutes(
			handlers.NewSessionHandlers(sessionService, cartService, paymentService),
			handlers.NewCartHandlers(cartService),
			handlers.NewAddressHandlers(addressService),
			handlers.NewPaymentHandlers(paymentService),
			handlers.NewCheckoutHandlers(checkoutService),
			handlers.NewDialogHandlers(sessionService),
		)),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	if sweepTicker != nil {
		sweepTicker.Stop()
	}
	sweepCancel()
	sweepWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
