package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/ferreirogomes/contatos/logger"
	"github.com/ferreirogomes/contatos/metrics"
	"github.com/ferreirogomes/contatos/models"
)

type BalanceFetcher interface {
	FetchBalances(ctx context.Context, owner solana.PublicKey) ([]models.AssetBalance, error)
}

type TransferSender interface {
	SendNative(ctx context.Context, sender, recipient solana.PublicKey, amountUi, memo string) (solana.Signature, error)
	SendToken(ctx context.Context, req TokenTransfer) (solana.Signature, error)
}

// PaymentStore é o que o serviço usa da persistência.
type PaymentStore interface {
	GetContact(ctx context.Context, id string) (models.Contact, bool, error)
	GetTemplate(ctx context.Context, id string) (models.PaymentTemplate, bool, error)
	TouchTemplate(ctx context.Context, id string) error
}

type EventEmitter interface {
	EmitTransfer(ctx context.Context, event models.TransferEvent) error
}

// PaymentService aplica as validações que antecedem um envio (endereço, saldo,
// conta de origem), despacha para o TransferService e registra o resultado.
type PaymentService struct {
	Balances  BalanceFetcher
	Transfers TransferSender
	Store     PaymentStore
	Events    EventEmitter
	Network   models.Network

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewPaymentService(balances BalanceFetcher, transfers TransferSender, store PaymentStore, events EventEmitter, network models.Network) *PaymentService {
	return &PaymentService{
		Balances:  balances,
		Transfers: transfers,
		Store:     store,
		Events:    events,
		Network:   network,
		inFlight:  make(map[string]struct{}),
	}
}

// SendRequest é o pedido de envio vindo da interface.
type SendRequest struct {
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
	AssetID    string `json:"asset_id"`
	Amount     string `json:"amount"`
	Memo       string `json:"memo,omitempty"`
	ContactID  string `json:"contact_id,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
}

type SendResult struct {
	Signature   string `json:"signature"`
	ExplorerURL string `json:"explorer_url"`
	AssetID     string `json:"asset_id"`
	AmountRaw   string `json:"amount_raw"`
}

// CheckSufficientBalance converte amount com a precisão do ativo e garante que não
// passa do saldo disponível.
func CheckSufficientBalance(asset models.AssetBalance, amount string) (*big.Int, error) {
	raw, err := AmountToRaw(amount, asset.Decimals)
	if err != nil {
		return nil, err
	}
	available := asset.AmountRaw
	if available == nil {
		available = new(big.Int)
	}
	if raw.Cmp(available) > 0 {
		return nil, fmt.Errorf("%w: pedido %s, disponível %s %s", ErrInsufficientBalance,
			RawToAmountUi(raw, asset.Decimals), asset.AmountUi, asset.Symbol)
	}
	return raw, nil
}

// Send valida o pedido e executa o envio. Um envio por carteira de cada vez:
// a sessão da carteira não aceita dois pedidos de assinatura simultâneos.
func (s *PaymentService) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sender, err := ParseAddress(req.Sender)
	if err != nil {
		return SendResult{}, err
	}
	recipient, err := ParseAddress(req.Recipient)
	if err != nil {
		return SendResult{}, err
	}
	if _, err := AmountToRaw(req.Amount, 0); err != nil {
		return SendResult{}, err
	}

	if !s.acquire(sender.String()) {
		return SendResult{}, ErrSendInProgress
	}
	defer s.release(sender.String())

	balances, err := s.Balances.FetchBalances(ctx, sender)
	if err != nil {
		return SendResult{}, err
	}
	asset, ok := models.FindAsset(balances, req.AssetID)
	if !ok {
		return SendResult{}, fmt.Errorf("%w: %s", ErrAssetNotFound, req.AssetID)
	}
	raw, err := CheckSufficientBalance(asset, req.Amount)
	if err != nil {
		return SendResult{}, err
	}
	if !asset.IsNative && asset.SourceAccountAddress == "" {
		return SendResult{}, ErrMissingSourceAccount
	}

	transfer := models.TransferRequest{
		Sender:    sender.String(),
		Recipient: recipient.String(),
		Asset:     asset,
		Amount:    req.Amount,
		Memo:      req.Memo,
	}
	kind, signature, err := s.dispatch(ctx, sender, recipient, transfer)
	metrics.RecordTransfer(kind, err)

	event := models.TransferEvent{
		Network:    s.Network,
		Sender:     sender.String(),
		Recipient:  recipient.String(),
		AssetID:    asset.AssetID,
		AmountRaw:  raw.String(),
		Memo:       strings.TrimSpace(req.Memo),
		ContactID:  req.ContactID,
		TemplateID: req.TemplateID,
		CreatedAt:  time.Now().UTC(),
	}
	if !signature.IsZero() {
		event.Signature = signature.String()
	}

	if err != nil {
		event.Status = models.TransferFailed
		event.Error = err.Error()
		s.emit(ctx, event)
		logger.GetLogger().Error().Err(err).Str("sender", sender.String()).Str("asset", asset.AssetID).Msg("Falha no envio")
		// Sem confirmação a assinatura ainda pode ser consultada depois.
		result := SendResult{AssetID: asset.AssetID, AmountRaw: raw.String()}
		if event.Signature != "" {
			result.Signature = event.Signature
			result.ExplorerURL = s.Network.ExplorerTxURL(event.Signature)
		}
		return result, err
	}

	event.Status = models.TransferConfirmed
	s.emit(ctx, event)

	if req.TemplateID != "" && s.Store != nil {
		if err := s.Store.TouchTemplate(ctx, req.TemplateID); err != nil {
			// O envio já foi confirmado; só o marcador de uso ficou para trás.
			logger.GetLogger().Warn().Err(err).Str("template", req.TemplateID).Msg("Falha ao marcar template como usado")
		}
	}

	return SendResult{
		Signature:   signature.String(),
		ExplorerURL: s.Network.ExplorerTxURL(signature.String()),
		AssetID:     asset.AssetID,
		AmountRaw:   raw.String(),
	}, nil
}

// SendTemplate envia o preset salvo para a carteira do contato dono do template.
func (s *PaymentService) SendTemplate(ctx context.Context, sender, templateID string) (SendResult, error) {
	template, found, err := s.Store.GetTemplate(ctx, templateID)
	if err != nil {
		return SendResult{}, err
	}
	if !found {
		return SendResult{}, fmt.Errorf("template %s não encontrado", templateID)
	}
	contact, found, err := s.Store.GetContact(ctx, template.ContactID)
	if err != nil {
		return SendResult{}, err
	}
	if !found || contact.WalletAddress == "" {
		return SendResult{}, fmt.Errorf("%w: contato sem carteira", ErrInvalidAddress)
	}

	raw, ok := new(big.Int).SetString(template.AmountRaw, 10)
	if !ok || raw.Sign() < 0 {
		return SendResult{}, fmt.Errorf("%w: template com amount_raw %q", ErrInvalidAmount, template.AmountRaw)
	}

	// A precisão vem do saldo atual do ativo; o valor em UI é reconvertido sem perda.
	senderKey, err := ParseAddress(sender)
	if err != nil {
		return SendResult{}, err
	}
	balances, err := s.Balances.FetchBalances(ctx, senderKey)
	if err != nil {
		return SendResult{}, err
	}
	asset, ok := models.FindAsset(balances, template.AssetID)
	if !ok {
		return SendResult{}, fmt.Errorf("%w: %s", ErrAssetNotFound, template.AssetID)
	}

	return s.Send(ctx, SendRequest{
		Sender:     sender,
		Recipient:  contact.WalletAddress,
		AssetID:    template.AssetID,
		Amount:     RawToAmountUi(raw, asset.Decimals),
		Memo:       template.Memo,
		ContactID:  contact.ID,
		TemplateID: template.ID,
	})
}

// dispatch escolhe o envio nativo ou de token conforme o ativo selecionado.
func (s *PaymentService) dispatch(ctx context.Context, sender, recipient solana.PublicKey, transfer models.TransferRequest) (string, solana.Signature, error) {
	if transfer.Asset.IsNative {
		signature, err := s.Transfers.SendNative(ctx, sender, recipient, transfer.Amount, transfer.Memo)
		return "native", signature, err
	}
	signature, err := s.Transfers.SendToken(ctx, TokenTransfer{
		Sender:               sender,
		RecipientOwner:       recipient,
		AssetID:              transfer.Asset.AssetID,
		SourceAccountAddress: transfer.Asset.SourceAccountAddress,
		AmountUi:             transfer.Amount,
		Decimals:             transfer.Asset.Decimals,
		Memo:                 transfer.Memo,
		TokenProgramID:       transfer.Asset.TokenProgramID,
	})
	return "token", signature, err
}

func (s *PaymentService) emit(ctx context.Context, event models.TransferEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.EmitTransfer(ctx, event); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("Falha ao publicar evento de transferência")
	}
}

func (s *PaymentService) acquire(wallet string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == nil {
		s.inFlight = make(map[string]struct{})
	}
	if _, busy := s.inFlight[wallet]; busy {
		return false
	}
	s.inFlight[wallet] = struct{}{}
	return true
}

func (s *PaymentService) release(wallet string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, wallet)
}
