// Package app wires every component once at start-up. It replaces the
// process-wide singletons with one explicit context object.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/account"
	"github.com/strun-app/strun-wallet/internal/api"
	"github.com/strun-app/strun-wallet/internal/auth"
	"github.com/strun-app/strun-wallet/internal/backend"
	"github.com/strun-app/strun-wallet/internal/client"
	"github.com/strun-app/strun-wallet/internal/config"
	"github.com/strun-app/strun-wallet/internal/gateway"
	"github.com/strun-app/strun-wallet/internal/handler"
	"github.com/strun-app/strun-wallet/internal/program"
	"github.com/strun-app/strun-wallet/internal/store"
	"github.com/strun-app/strun-wallet/wallet"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     store.Store
	Ledger    *client.SolanaClient
	Wallet    *wallet.Custodian
	Auth      *auth.GoTrue
	Tokens    *auth.TokenStore
	Gateway   *gateway.Gateway
	Backend   *backend.Client
	Account   *account.Service
	Program   *program.Client
	unsubAuth func()
}

// New builds the application on an opened store. The App owns s afterwards.
func New(cfg *config.Config, s store.Store, logger *zap.Logger) (*App, error) {
	ledger := client.NewSolanaClient(client.SolanaOptions{
		Network:        cfg.ClusterNetwork(),
		RPCURL:         cfg.RPCURL(),
		RPCTimeout:     cfg.RPCTimeout,
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.ConfirmPollInterval,
	}, logger.Named("ledger"))

	var rates wallet.RateSource
	if cfg.CoinGeckoURL != "" {
		rates = client.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.HTTPTimeout)
	}

	custodian := wallet.New(s, ledger, rates, wallet.Options{
		Cooldown:          cfg.PayCooldown,
		RegenerateCorrupt: cfg.RegenerateCorruptWallet,
	}, logger.Named("wallet"))

	idp := auth.NewGoTrue(auth.Options{
		URL:     cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
		Timeout: cfg.HTTPTimeout,
	}, s, logger.Named("auth"))

	tokens := auth.NewTokenStore()
	unsub := idp.OnAuthStateChange(tokens.HandleAuthEvent)

	gw := gateway.New(gateway.Options{BaseURL: cfg.APIURL, Timeout: cfg.HTTPTimeout}, idp, tokens, logger.Named("gateway"))
	backendClient := backend.New(gw)

	programClient, err := program.NewClient(cfg.ProgramID, custodian, logger.Named("program"))
	if err != nil {
		unsub()
		return nil, err
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     s,
		Ledger:    ledger,
		Wallet:    custodian,
		Auth:      idp,
		Tokens:    tokens,
		Gateway:   gw,
		Backend:   backendClient,
		Account:   account.NewService(idp, tokens, custodian, backendClient.Users, store.NewLenient(s, logger.Named("cache")), logger.Named("account")),
		Program:   programClient,
		unsubAuth: unsub,
	}, nil
}

// Open opens the configured store and builds the application on it.
func Open(cfg *config.Config, logger *zap.Logger) (*App, error) {
	password, err := cfg.StorePasswordBytes()
	if err != nil {
		return nil, err
	}
	defer clear(password)

	s, err := store.Open(cfg.StoreOptions(password))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a, err := New(cfg, s, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	return a, nil
}

// Serve runs the local wallet API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Ledger.VerifyNetwork(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("127.0.0.1", a.Config.Port),
		Handler:           api.SetupRouter(handler.NewWalletHandler(a.Wallet, a.Logger.Named("http"))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("wallet API listening", zap.String("addr", srv.Addr), zap.String("network", string(a.Ledger.Network())))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

// Close releases the store and detaches listeners.
func (a *App) Close() error {
	if a.unsubAuth != nil {
		a.unsubAuth()
	}
	_ = a.Logger.Sync()
	return a.Store.Close()
}
