package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/ferreirogomes/contatos/blockchain_listener"
	"github.com/ferreirogomes/contatos/config"
	"github.com/ferreirogomes/contatos/emitters"
	"github.com/ferreirogomes/contatos/handlers"
	"github.com/ferreirogomes/contatos/logger"
	"github.com/ferreirogomes/contatos/models"
	"github.com/ferreirogomes/contatos/services"
	"github.com/ferreirogomes/contatos/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("Falha ao carregar configuração")
	}
	logger.Init(cfg.LogLevel)
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Falha fatal ao conectar ao banco de dados e aplicar migrações")
	}
	defer db.Close()

	var emitter services.EventEmitter = emitters.NopEmitter{}
	if cfg.Kafka.BrokerAddress != "" {
		kafkaEmitter := emitters.NewKafkaEmitter(cfg.Kafka.BrokerAddress, cfg.Kafka.Topic)
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
		log.Info().Str("broker", cfg.Kafka.BrokerAddress).Str("topic", cfg.Kafka.Topic).Msg("Publicação de eventos habilitada")
	}

	var tokenPrograms []solana.PublicKey
	for _, name := range cfg.Solana.TokenPrograms {
		program, err := services.TokenProgramFromName(name)
		if err != nil {
			log.Fatal().Err(err).Str("program", name).Msg("Programa de token inválido")
		}
		tokenPrograms = append(tokenPrograms, program)
	}

	clusters := make(map[models.Network]handlers.Cluster)
	for _, network := range []models.Network{models.Devnet, models.MainnetBeta} {
		endpoints := cfg.Solana.Cluster(network)
		client := rpc.New(endpoints.RPCEndpoint)

		var confirmer services.Confirmer
		poller := blockchain_listener.NewPollingConfirmer(client, cfg.Solana.ConfirmPollInterval)
		confirmer = poller
		if cfg.Solana.UseWSConfirmation {
			sub, err := blockchain_listener.NewSubscriptionConfirmer(ctx, endpoints.WSEndpoint, poller)
			if err != nil {
				log.Warn().Err(err).Str("network", string(network)).Msg("WebSocket indisponível; confirmando por polling")
			} else {
				defer sub.Close()
				confirmer = sub
			}
		}

		cluster := handlers.Cluster{}
		var signer services.Signer
		if cfg.Solana.SignerPrivateKey != "" {
			keypair, err := services.NewKeypairSigner(client, cfg.Solana.SignerPrivateKey)
			if err != nil {
				log.Fatal().Err(err).Msg("Falha ao inicializar signer local")
			}
			signer = keypair
		} else {
			external := services.NewExternalSigner(client)
			external.Timeout = cfg.Solana.ExternalSignTimeout
			signer = external
			cluster.External = external
		}

		aggregator := services.NewBalanceAggregator(client, tokenPrograms...)
		transfers := services.NewTransferService(client, signer, confirmer)
		cluster.Balances = aggregator
		cluster.Payments = services.NewPaymentService(aggregator, transfers, db, emitter, network)
		clusters[network] = cluster

		log.Info().Str("network", string(network)).Str("rpc", endpoints.RPCEndpoint).Msg("Cluster configurado")
	}

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: handlers.NewRouter(db, clusters),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Falha ao encerrar servidor")
		}
	}()

	log.Info().Str("port", cfg.HTTPPort).Msg("Servidor de contatos rodando")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Servidor encerrado com erro")
	}
}
