package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"

	"github.com/ferreirogomes/contatos/models"
)

// Config reúne toda a configuração da aplicação.
type Config struct {
	LogLevel string
	HTTPPort string
	Database DatabaseConfig
	Solana   SolanaConfig
	Kafka    KafkaConfig
}

type DatabaseConfig struct {
	Driver string // "postgres" ou "sqlite"
	DSN    string
}

// SolanaConfig descreve os endpoints de cada cluster e como assinar/confirmar.
type SolanaConfig struct {
	Clusters map[models.Network]ClusterConfig
	// Chave privada (base58) de uma carteira custodial; vazia usa o fluxo de assinatura externa.
	SignerPrivateKey string
	// Programas de token consultados na agregação de saldos.
	TokenPrograms       []string
	ConfirmPollInterval time.Duration
	UseWSConfirmation   bool
	ExternalSignTimeout time.Duration
}

type ClusterConfig struct {
	RPCEndpoint string
	WSEndpoint  string
}

type KafkaConfig struct {
	BrokerAddress string // vazio desativa a publicação de eventos
	Topic         string
}

// Load carrega a configuração de variáveis de ambiente (e de um .env, se existir).
func Load() (*Config, error) {
	// .env é opcional; as variáveis podem vir do ambiente.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "contatos.db"),
		},
		Solana: SolanaConfig{
			Clusters: map[models.Network]ClusterConfig{
				models.Devnet: {
					RPCEndpoint: getEnv("SOLANA_RPC_DEVNET", rpc.DevNet_RPC),
					WSEndpoint:  getEnv("SOLANA_WS_DEVNET", rpc.DevNet_WS),
				},
				models.MainnetBeta: {
					RPCEndpoint: getEnv("SOLANA_RPC_MAINNET", rpc.MainNetBeta_RPC),
					WSEndpoint:  getEnv("SOLANA_WS_MAINNET", rpc.MainNetBeta_WS),
				},
			},
			SignerPrivateKey:    getEnv("SOLANA_SIGNER_PRIVATE_KEY", ""),
			TokenPrograms:       getEnvAsList("SOLANA_TOKEN_PROGRAMS", []string{"spl-token"}),
			ConfirmPollInterval: time.Duration(getEnvAsInt("SOLANA_CONFIRM_POLL_MS", 1000)) * time.Millisecond,
			UseWSConfirmation:   getEnvAsBool("SOLANA_CONFIRM_WS", false),
			ExternalSignTimeout: time.Duration(getEnvAsInt("EXTERNAL_SIGN_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		Kafka: KafkaConfig{
			BrokerAddress: getEnv("KAFKA_BROKER_ADDRESS", ""),
			Topic:         getEnv("KAFKA_TOPIC", "contatos-transfers"),
		},
	}

	return cfg, nil
}

// Cluster devolve os endpoints do cluster pedido, caindo para devnet.
func (s SolanaConfig) Cluster(network models.Network) ClusterConfig {
	if c, ok := s.Clusters[network]; ok {
		return c
	}
	return s.Clusters[models.Devnet]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsList lê uma lista separada por vírgulas.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
