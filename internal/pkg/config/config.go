package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	Locale   string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	EVM      EVMConfig
	TON      TONConfig
	Tx       TxConfig
	Poll     PollConfig
	Pinning  PinningConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	MetricsPort string // worker process /metrics
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	AutoMigration bool
}

type RedisConfig struct {
	Host string
	Port string
}

type EVMConfig struct {
	Enabled         bool
	RPCURL          string
	ChainID         int64
	ContractAddress string
	PrivateKey      string // hex, no 0x prefix; empty means read-only
}

type TONConfig struct {
	Enabled         bool
	Network         string
	ConfigURL       string // liteserver global config
	RegistryAddress string // counter contract bumped on registration
	VideoContracts  []string
	Mnemonic        []string
	WriteFeeNano    int64 // value attached to owner/admin messages
	Ops             TONOpCodes
}

// TONOpCodes are the 32-bit operation identifiers of the deployed contracts.
// They belong to the contract ABI and are never derived at runtime.
type TONOpCodes struct {
	Purchase     uint32
	Withdraw     uint32
	UpdateVideo  uint32
	ToggleActive uint32
	Register     uint32
}

type TxConfig struct {
	ValidityWindow     time.Duration
	DefaultDisplayTime int64
	MinPriceNano       int64
	MaxFileSize        int64 // bytes
}

type PollConfig struct {
	Interval          time.Duration
	MaxAttempts       int
	MaxLookupFailures int
	Workers           int
}

type PinningConfig struct {
	Endpoint   string // S3-compatible pinning gateway
	Region     string
	Bucket     string
	GatewayURL string
	ThumbWidth int
}

type SessionConfig struct {
	JWTSecret string
	Issuer    string
}

func LoadConfig() *Config {
	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Locale: getEnv("APP_LOCALE", "en"),
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "3000"),
			Host:        getEnv("SERVER_HOST", "localhost"),
			MetricsPort: getEnv("WORKER_METRICS_PORT", "9100"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			DBName:        getEnv("DB_NAME", "ppv_marketplace"),
			AutoMigration: getEnv("RUN_AUTO_MIGRATION", "false") == "true",
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		EVM: EVMConfig{
			Enabled:         getEnv("EVM_ENABLED", "true") == "true",
			RPCURL:          getEnv("EVM_RPC_URL", "https://sepolia.rpc.zora.energy"),
			ChainID:         getEnvAsInt64("EVM_CHAIN_ID", 999999999),
			ContractAddress: getEnv("EVM_CONTRACT_ADDRESS", ""),
			PrivateKey:      strings.TrimPrefix(getEnv("EVM_PRIVATE_KEY", ""), "0x"),
		},
		TON: TONConfig{
			Enabled:         getEnv("TON_ENABLED", "true") == "true",
			Network:         getEnv("TON_NETWORK", "testnet"),
			ConfigURL:       getEnv("TON_CONFIG_URL", "https://ton-blockchain.github.io/testnet-global.config.json"),
			RegistryAddress: getEnv("TON_REGISTRY_ADDRESS", ""),
			VideoContracts:  getEnvAsList("TON_VIDEO_CONTRACTS"),
			Mnemonic:        strings.Fields(getEnv("TON_MNEMONIC", "")),
			WriteFeeNano:    getEnvAsInt64("TON_WRITE_FEE_NANO", 50_000_000), // 0.05 TON
			Ops: TONOpCodes{
				Purchase:     getEnvAsUint32("TON_OP_PURCHASE", 0x7362d09c),
				Withdraw:     getEnvAsUint32("TON_OP_WITHDRAW", 0x595f07bc),
				UpdateVideo:  getEnvAsUint32("TON_OP_UPDATE_VIDEO", 0x1a0b9d51),
				ToggleActive: getEnvAsUint32("TON_OP_TOGGLE_ACTIVE", 0x2fcb26a2),
				Register:     getEnvAsUint32("TON_OP_REGISTER", 0x7362d09c),
			},
		},
		Tx: TxConfig{
			ValidityWindow:     getEnvAsDuration("TX_VALIDITY_WINDOW", 360*time.Second),
			DefaultDisplayTime: getEnvAsInt64("TX_DEFAULT_DISPLAY_TIME", 3600),
			MinPriceNano:       getEnvAsInt64("TX_MIN_PRICE_NANO", 1_000_000), // 0.001
			MaxFileSize:        getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", 100*1024*1024),
		},
		Poll: PollConfig{
			Interval:          getEnvAsDuration("POLL_INTERVAL", 2*time.Second),
			MaxAttempts:       int(getEnvAsInt64("POLL_MAX_ATTEMPTS", 60)),
			MaxLookupFailures: int(getEnvAsInt64("POLL_MAX_LOOKUP_FAILURES", 3)),
			Workers:           int(getEnvAsInt64("POLL_WORKERS", 4)),
		},
		Pinning: PinningConfig{
			Endpoint:   getEnv("PIN_ENDPOINT", "https://s3.filebase.com"),
			Region:     getEnv("PIN_REGION", "us-east-1"),
			Bucket:     getEnv("PIN_BUCKET", ""),
			GatewayURL: getEnv("PIN_GATEWAY_URL", "https://gateway.pinata.cloud/ipfs/"),
			ThumbWidth: int(getEnvAsInt64("PIN_THUMB_WIDTH", 640)),
		},
		Session: SessionConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "ppv-marketplace"),
		},
	}
}

// Validate reports settings without which the configured backends cannot start.
func (c *Config) Validate() error {
	var missing []string
	if c.EVM.Enabled && c.EVM.ContractAddress == "" {
		missing = append(missing, "EVM_CONTRACT_ADDRESS")
	}
	if c.TON.Enabled && c.TON.RegistryAddress == "" && len(c.TON.VideoContracts) == 0 {
		missing = append(missing, "TON_REGISTRY_ADDRESS or TON_VIDEO_CONTRACTS")
	}
	if !c.EVM.Enabled && !c.TON.Enabled {
		missing = append(missing, "EVM_ENABLED or TON_ENABLED")
	}
	if c.Poll.MaxAttempts <= 0 {
		missing = append(missing, "POLL_MAX_ATTEMPTS > 0")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.DBName)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvAsUint32 accepts decimal or 0x-prefixed hex.
func getEnvAsUint32(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 0, 32); err == nil {
			return uint32(parsed)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
