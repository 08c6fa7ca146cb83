package blockchain_listener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/ferreirogomes/contatos/logger"
)

var (
	// ErrBlockhashExpired indica que o blockhash âncora expirou antes da confirmação.
	ErrBlockhashExpired = errors.New("blockhash expirou antes da confirmação")
	// ErrTransactionRejected indica que a ledger executou a transação com erro.
	ErrTransactionRejected = errors.New("transação rejeitada pela ledger")
)

const defaultPollInterval = time.Second

// StatusClient é o subconjunto do *rpc.Client usado para acompanhar assinaturas.
type StatusClient interface {
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

var _ StatusClient = (*rpc.Client)(nil)

// PollingConfirmer consulta o status da assinatura periodicamente até ela chegar a
// "confirmed" ou a altura de bloco passar do último bloco válido do blockhash.
type PollingConfirmer struct {
	Client   StatusClient
	Interval time.Duration
}

func NewPollingConfirmer(client StatusClient, interval time.Duration) *PollingConfirmer {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &PollingConfirmer{Client: client, Interval: interval}
}

func (c *PollingConfirmer) Confirm(ctx context.Context, signature solana.Signature, lastValidBlockHeight uint64) error {
	ticker := time.NewTicker(c.interval())
	defer ticker.Stop()

	for {
		confirmed, err := c.checkStatus(ctx, signature)
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}
		if err := c.checkExpiry(ctx, lastValidBlockHeight); err != nil {
			// Última chance: a confirmação pode ter chegado junto com a expiração.
			if confirmed, statusErr := c.checkStatus(ctx, signature); statusErr == nil && confirmed {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *PollingConfirmer) interval() time.Duration {
	if c.Interval <= 0 {
		return defaultPollInterval
	}
	return c.Interval
}

// checkStatus devolve true quando a assinatura está em confirmed ou finalized.
// Falhas de RPC não são fatais: o próximo ciclo consulta de novo.
func (c *PollingConfirmer) checkStatus(ctx context.Context, signature solana.Signature) (bool, error) {
	resp, err := c.Client.GetSignatureStatuses(ctx, false, signature)
	if err != nil {
		if !errors.Is(err, rpc.ErrNotFound) {
			logger.GetLogger().Warn().Err(err).Str("signature", signature.String()).Msg("Erro ao consultar status da transação")
		}
		return false, nil
	}
	if resp == nil || len(resp.Value) == 0 || resp.Value[0] == nil {
		return false, nil
	}

	status := resp.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("%w: %v", ErrTransactionRejected, status.Err)
	}
	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true, nil
	}
	return false, nil
}

func (c *PollingConfirmer) checkExpiry(ctx context.Context, lastValidBlockHeight uint64) error {
	height, err := c.Client.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Msg("Erro ao consultar altura de bloco")
		return nil
	}
	if height > lastValidBlockHeight {
		return fmt.Errorf("%w: altura %d > último bloco válido %d", ErrBlockhashExpired, height, lastValidBlockHeight)
	}
	return nil
}
