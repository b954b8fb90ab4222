package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"

	"github.com/strun-app/strun-wallet/internal/client"
	"github.com/strun-app/strun-wallet/internal/store"
)

// Prefix of every environment variable read by Load.
const Prefix = "STRUN"

// Config contains all configuration parameters for the application.
// The store password is not part of it unless set through STRUN_STORE_PASSWORD;
// interactive runs use PromptPassword instead.
type Config struct {
	Network      string `envconfig:"NETWORK" default:"devnet" validate:"oneof=mainnet-beta devnet testnet localnet"`
	SolanaRPCURL string `envconfig:"SOLANA_RPC_URL" validate:"omitempty,url"`

	APIURL          string `envconfig:"API_URL" default:"https://strun-backend-production.up.railway.app/api" validate:"required,url"`
	SupabaseURL     string `envconfig:"SUPABASE_URL" default:"https://yspbmyvazyroblgfuxuj.supabase.co" validate:"required,url"`
	SupabaseAnonKey string `envconfig:"SUPABASE_ANON_KEY"`
	CoinGeckoURL    string `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3" validate:"omitempty,url"`
	ProgramID       string `envconfig:"PROGRAM_ID" default:"9qpcky7wTGD3VHMMzVdaG2G2WrEi8SgpmVhhbyzJG8Mf" validate:"required"`

	StoreBackend  string `envconfig:"STORE_BACKEND" default:"file" validate:"oneof=memory file wal"`
	StorePath     string `envconfig:"STORE_PATH" default:"strun.wallet" validate:"required_unless=StoreBackend memory"`
	StorePassword string `envconfig:"STORE_PASSWORD"`

	RPCTimeout          time.Duration `envconfig:"RPC_TIMEOUT" default:"15s" validate:"gt=0"`
	ConfirmTimeout      time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"60s" validate:"gt=0"`
	ConfirmPollInterval time.Duration `envconfig:"CONFIRM_POLL_INTERVAL" default:"500ms" validate:"gt=0,ltfield=ConfirmTimeout"`
	HTTPTimeout         time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s" validate:"gt=0"`

	PayCooldown time.Duration `envconfig:"PAY_COOLDOWN" default:"0s" validate:"gte=0"`

	// RegenerateCorruptWallet defaults to refusing a corrupted stored wallet instead of
	// minting a new one. This departs from the documented regenerate behaviour pending
	// product sign-off. See wallet.Options.RegenerateCorrupt.
	RegenerateCorruptWallet bool `envconfig:"REGENERATE_CORRUPT_WALLET" default:"false"`

	Port      string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console" validate:"oneof=json console"`
	LogFile   string `envconfig:"LOG_FILE"`
}

// Load reads the configuration from STRUN_* environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that an explicit RPC endpoint is not the
// public endpoint of a different cluster.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	network := c.ClusterNetwork()
	if c.SolanaRPCURL != "" {
		for _, other := range []client.Network{client.NetworkMainnet, client.NetworkDevnet, client.NetworkTestnet} {
			if other != network && sameEndpoint(c.SolanaRPCURL, other.DefaultRPCURL()) {
				return fmt.Errorf("invalid config: SOLANA_RPC_URL points at %s but NETWORK is %s", other, network)
			}
		}
	}
	return nil
}

// ClusterNetwork returns the configured network. Validate must have passed.
func (c *Config) ClusterNetwork() client.Network {
	return client.Network(c.Network)
}

// RPCURL returns the explicit RPC endpoint or the cluster default.
func (c *Config) RPCURL() string {
	if c.SolanaRPCURL != "" {
		return c.SolanaRPCURL
	}
	return c.ClusterNetwork().DefaultRPCURL()
}

// StoreOptions returns the store options; password is only used by the file backend.
func (c *Config) StoreOptions(password []byte) store.Options {
	return store.Options{Backend: c.StoreBackend, Path: c.StorePath, Password: password}
}

// NeedsPassword reports whether the store backend is encrypted and no password came from the environment.
func (c *Config) NeedsPassword() bool {
	return c.StoreBackend == store.BackendFile && c.StorePassword == ""
}

func sameEndpoint(a, b string) bool {
	return strings.TrimRight(strings.ToLower(a), "/") == strings.TrimRight(strings.ToLower(b), "/")
}

// PromptPassword prompts for a password in the terminal without echoing it.
// Caller must clear the returned slice after use.
func PromptPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run interactively or set STRUN_STORE_PASSWORD")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}

// StorePasswordBytes returns the store password from the environment or the terminal.
func (c *Config) StorePasswordBytes() ([]byte, error) {
	if c.StoreBackend != store.BackendFile {
		return nil, nil
	}
	if c.StorePassword != "" {
		return []byte(c.StorePassword), nil
	}
	return PromptPassword("Enter wallet password: ")
}
