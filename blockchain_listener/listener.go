package blockchain_listener

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/ferreirogomes/contatos/logger"
)

// SubscriptionConfirmer escuta a confirmação pelo WebSocket (signatureSubscribe) em vez
// de consultar o RPC a cada ciclo. A expiração do blockhash continua sendo checada por polling.
type SubscriptionConfirmer struct {
	*PollingConfirmer
	WSClient *ws.Client
}

// NewSubscriptionConfirmer conecta ao endpoint WebSocket do cluster.
func NewSubscriptionConfirmer(ctx context.Context, wsEndpoint string, poller *PollingConfirmer) (*SubscriptionConfirmer, error) {
	wsClient, err := ws.Connect(ctx, wsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao WebSocket Solana: %w", err)
	}
	return &SubscriptionConfirmer{PollingConfirmer: poller, WSClient: wsClient}, nil
}

func (c *SubscriptionConfirmer) Confirm(ctx context.Context, signature solana.Signature, lastValidBlockHeight uint64) error {
	sub, err := c.WSClient.SignatureSubscribe(signature, rpc.CommitmentConfirmed)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Msg("Falha ao subscrever assinatura; usando polling")
		return c.PollingConfirmer.Confirm(ctx, signature, lastValidBlockHeight)
	}
	defer sub.Unsubscribe()

	// A notificação pode ter saído antes da subscrição.
	confirmed, err := c.checkStatus(ctx, signature)
	if err != nil || confirmed {
		return err
	}

	ticker := time.NewTicker(c.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case got, ok := <-sub.Response():
			if !ok {
				return c.PollingConfirmer.Confirm(ctx, signature, lastValidBlockHeight)
			}
			if got.Value.Err != nil {
				return fmt.Errorf("%w: %v", ErrTransactionRejected, got.Value.Err)
			}
			logger.GetLogger().Debug().Str("signature", signature.String()).Uint64("slot", got.Context.Slot).Msg("Confirmação recebida via WebSocket")
			return nil
		case err := <-sub.Err():
			logger.GetLogger().Warn().Err(err).Msg("Subscrição encerrada; usando polling")
			return c.PollingConfirmer.Confirm(ctx, signature, lastValidBlockHeight)
		case <-ticker.C:
			if err := c.checkExpiry(ctx, lastValidBlockHeight); err != nil {
				if confirmed, statusErr := c.checkStatus(ctx, signature); statusErr == nil && confirmed {
					return nil
				}
				return err
			}
		}
	}
}

func (c *SubscriptionConfirmer) Close() {
	if c.WSClient != nil {
		c.WSClient.Close()
	}
}
