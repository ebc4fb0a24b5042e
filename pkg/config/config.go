package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	"github.com/chainsafe/cdp-sdk-go/pkg/transport"
)

// TokenServerConfig represents the token server configuration
type TokenServerConfig struct {
	Server   ServerConfig      `mapstructure:"server"`
	CDP      CDPConfig         `mapstructure:"cdp"`
	Auth     ClientAuthConfig  `mapstructure:"auth"`
	Logging  LoggingConfig     `mapstructure:"logging"`
	Shutdown ShutdownConfig    `mapstructure:"shutdown"`
	Tokens   TokenIssuerConfig `mapstructure:"tokens"`
}

// CLIConfig represents the cdp command line configuration
type CLIConfig struct {
	CDP     CDPConfig     `mapstructure:"cdp"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  string        `mapstructure:"output"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CDPConfig contains API credentials and client settings
type CDPConfig struct {
	APIKeyID      string        `mapstructure:"api_key_id"`
	APIKeySecret  string        `mapstructure:"api_key_secret"`
	WalletSecret  string        `mapstructure:"wallet_secret"`
	BasePath      string        `mapstructure:"base_path"`
	HostOverride  string        `mapstructure:"host_override"`
	ExpiresIn     int64         `mapstructure:"expires_in"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Debugging     bool          `mapstructure:"debugging"`
	Source        string        `mapstructure:"source"`
	SourceVersion string        `mapstructure:"source_version"`
	Retry         RetryConfig   `mapstructure:"retry"`
	Solana        SolanaConfig  `mapstructure:"solana"`
}

// RetryConfig contains the retry bounds exposed in config files
type RetryConfig struct {
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// SolanaConfig contains Solana JSON-RPC endpoints used to build transfers
type SolanaConfig struct {
	MainnetRPC string `mapstructure:"mainnet_rpc"`
	DevnetRPC  string `mapstructure:"devnet_rpc"`
}

// ClientAuthConfig protects the token endpoint with a shared secret
type ClientAuthConfig struct {
	ClientSecret string `mapstructure:"client_secret"` //nolint:gosec // config field name
}

// TokenIssuerConfig limits what the token server will sign
type TokenIssuerConfig struct {
	AllowedHosts   []string `mapstructure:"allowed_hosts"`
	AllowWallet    bool     `mapstructure:"allow_wallet_auth"`
	MaxExpiresIn   int64    `mapstructure:"max_expires_in"`
	DefaultExpires int64    `mapstructure:"default_expires_in"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Credentials returns the auth credentials held by the config.
func (c CDPConfig) Credentials() auth.Credentials {
	return auth.Credentials{
		APIKeyID:     c.APIKeyID,
		APIKeySecret: c.APIKeySecret,
		WalletSecret: c.WalletSecret,
	}
}

// TransportConfig converts the config into transport settings.
func (c CDPConfig) TransportConfig() *transport.Config {
	retry := transport.DefaultRetryConfig()
	retry.MaxRetries = c.Retry.MaxRetries
	if c.Retry.InitialBackoff > 0 {
		retry.InitialBackoff = c.Retry.InitialBackoff
	}
	if c.Retry.MaxBackoff > 0 {
		retry.MaxBackoff = c.Retry.MaxBackoff
	}
	return &transport.Config{
		BasePath:      c.BasePath,
		HostOverride:  c.HostOverride,
		ExpiresIn:     c.ExpiresIn,
		Timeout:       c.Timeout,
		Debugging:     c.Debugging,
		Source:        c.Source,
		SourceVersion: c.SourceVersion,
		Retry:         &retry,
	}
}

// LoadTokenServer loads token server configuration from file
func LoadTokenServer(configPath string) (*TokenServerConfig, error) {
	v := newViper()
	setCDPDefaults(v)
	setTokenServerDefaults(v)

	if err := readConfig(v, configPath, true); err != nil {
		return nil, err
	}

	var config TokenServerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateTokenServer(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// LoadCLI loads command line configuration. The file is optional; CDP_*
// environment variables fill in what it leaves out.
func LoadCLI(configPath string) (*CLIConfig, error) {
	v := newViper()
	setCDPDefaults(v)
	v.SetDefault("output", "json")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_path", "stderr")

	if err := readConfig(v, configPath, false); err != nil {
		return nil, err
	}

	var config CLIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch config.Output {
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("config validation failed: output must be json or yaml, got %q", config.Output)
	}
	return &config, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials use the names shared by every CDP SDK.
	_ = v.BindEnv("cdp.api_key_id", "CDP_API_KEY_ID")
	_ = v.BindEnv("cdp.api_key_secret", "CDP_API_KEY_SECRET")
	_ = v.BindEnv("cdp.wallet_secret", "CDP_WALLET_SECRET")
	_ = v.BindEnv("cdp.base_path", "CDP_BASE_PATH")
	return v
}

func readConfig(v *viper.Viper, configPath string, required bool) error {
	if configPath == "" {
		if required {
			return errors.New("config file path is required")
		}
		return nil
	}
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func setCDPDefaults(v *viper.Viper) {
	v.SetDefault("cdp.base_path", transport.DefaultBasePath)
	v.SetDefault("cdp.expires_in", auth.DefaultExpiresIn)
	v.SetDefault("cdp.timeout", "30s")
	v.SetDefault("cdp.source", "sdk-auth")

	// Retry defaults
	v.SetDefault("cdp.retry.max_retries", 3)
	v.SetDefault("cdp.retry.initial_backoff", "100ms")
	v.SetDefault("cdp.retry.max_backoff", "30s")

	// Solana RPC defaults
	v.SetDefault("cdp.solana.mainnet_rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("cdp.solana.devnet_rpc", "https://api.devnet.solana.com")
}

func setTokenServerDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	// Token defaults
	v.SetDefault("tokens.allow_wallet_auth", true)
	v.SetDefault("tokens.max_expires_in", 600)
	v.SetDefault("tokens.default_expires_in", auth.DefaultExpiresIn)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	v.SetDefault("shutdown.timeout", "30s")
}

func validateTokenServer(config *TokenServerConfig) error {
	if config.CDP.APIKeyID == "" {
		return fmt.Errorf("cdp.api_key_id is required")
	}
	if config.CDP.APIKeySecret == "" {
		return fmt.Errorf("cdp.api_key_secret is required")
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if config.Tokens.MaxExpiresIn < config.Tokens.DefaultExpires {
		return fmt.Errorf("tokens.max_expires_in must be >= tokens.default_expires_in")
	}
	return nil
}
