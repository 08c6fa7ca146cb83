package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"

	"github.com/ferreirogomes/contatos/logger"
)

// Broadcaster transmite uma transação já assinada.
type Broadcaster interface {
	SendTransactionWithOpts(ctx context.Context, transaction *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
}

var _ Broadcaster = (*rpc.Client)(nil)

func broadcast(ctx context.Context, client Broadcaster, tx *solana.Transaction, minContextSlot uint64) (solana.Signature, error) {
	minSlot := minContextSlot
	return client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
		MinContextSlot:      &minSlot,
	})
}

// KeypairSigner assina com uma chave privada local (carteira custodial ou ambiente de dev).
type KeypairSigner struct {
	Client Broadcaster
	Key    solana.PrivateKey
}

func NewKeypairSigner(client Broadcaster, privateKeyBase58 string) (*KeypairSigner, error) {
	key, err := solana.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar chave privada do signer: %w", err)
	}
	return &KeypairSigner{Client: client, Key: key}, nil
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.Key.PublicKey()
}

func (s *KeypairSigner) SignAndSend(ctx context.Context, tx *solana.Transaction, minContextSlot uint64) (solana.Signature, error) {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.Key.PublicKey()) {
			return &s.Key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao assinar transação: %w", err)
	}
	return broadcast(ctx, s.Client, tx, minContextSlot)
}

var (
	ErrPendingNotFound  = errors.New("pedido de assinatura não encontrado")
	ErrSignedTxMismatch = errors.New("transação assinada não corresponde à preparada")
	ErrPendingRejected  = errors.New("assinatura recusada pela carteira")
)

// PendingSignature é uma transação aguardando assinatura da carteira do usuário.
type PendingSignature struct {
	ID             string    `json:"id"`
	Wallet         string    `json:"wallet"`
	Transaction    string    `json:"transaction"` // Base64, sem assinaturas
	MinContextSlot uint64    `json:"min_context_slot"`
	CreatedAt      time.Time `json:"created_at"`
}

type signCompletion struct {
	signedTx string
	err      error
}

type pendingRequest struct {
	PendingSignature
	message []byte
	done    chan signCompletion
}

// ExternalSigner entrega a transação preparada a uma carteira fora do processo
// (app móvel) e espera ela devolver a transação assinada. Com Timeout zero a espera
// dura enquanto o ctx de quem chama estiver vivo.
type ExternalSigner struct {
	Client  Broadcaster
	Timeout time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRequest
}

func NewExternalSigner(client Broadcaster) *ExternalSigner {
	return &ExternalSigner{Client: client, pending: make(map[string]*pendingRequest)}
}

func (s *ExternalSigner) SignAndSend(ctx context.Context, tx *solana.Transaction, minContextSlot uint64) (solana.Signature, error) {
	// Carteiras esperam os slots de assinatura preenchidos com zeros.
	if len(tx.Signatures) == 0 {
		tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	}
	encoded, err := tx.ToBase64()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao serializar transação: %w", err)
	}
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao serializar mensagem: %w", err)
	}

	req := &pendingRequest{
		PendingSignature: PendingSignature{
			ID:             uuid.New().String(),
			Wallet:         tx.Message.AccountKeys[0].String(),
			Transaction:    encoded,
			MinContextSlot: minContextSlot,
			CreatedAt:      time.Now(),
		},
		message: message,
		done:    make(chan signCompletion, 1),
	}

	s.mu.Lock()
	s.pending[req.ID] = req
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, req.ID)
		s.mu.Unlock()
	}()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	logger.GetLogger().Info().
		Str("request", req.ID).
		Str("wallet", req.Wallet).
		Msg("Aguardando assinatura da carteira")

	var result signCompletion
	select {
	case <-ctx.Done():
		return solana.Signature{}, ctx.Err()
	case result = <-req.done:
	}
	if result.err != nil {
		return solana.Signature{}, result.err
	}

	signed, err := solana.TransactionFromBase64(result.signedTx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao deserializar transação assinada: %w", err)
	}
	signedMessage, err := signed.Message.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("falha ao serializar mensagem assinada: %w", err)
	}
	if !bytes.Equal(signedMessage, req.message) {
		return solana.Signature{}, ErrSignedTxMismatch
	}
	if err := signed.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("assinaturas inválidas: %w", err)
	}

	return broadcast(ctx, s.Client, signed, minContextSlot)
}

// Pending lista os pedidos em aberto de uma carteira, do mais antigo ao mais novo.
func (s *ExternalSigner) Pending(wallet string) []PendingSignature {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PendingSignature, 0)
	for _, req := range s.pending {
		if wallet == "" || req.Wallet == wallet {
			out = append(out, req.PendingSignature)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Complete entrega a transação assinada (base64) ao envio que está esperando.
func (s *ExternalSigner) Complete(id, signedTxBase64 string) error {
	return s.resolve(id, signCompletion{signedTx: signedTxBase64})
}

// Reject encerra o pedido com o erro reportado pela carteira.
func (s *ExternalSigner) Reject(id string, walletErr *WalletError) error {
	var err error = ErrPendingRejected
	if walletErr != nil {
		err = fmt.Errorf("%w: %w", ErrPendingRejected, walletErr)
	}
	return s.resolve(id, signCompletion{err: err})
}

func (s *ExternalSigner) resolve(id string, c signCompletion) error {
	s.mu.Lock()
	req, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrPendingNotFound
	}
	req.done <- c
	return nil
}
