package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferreirogomes/contatos/models"
	"github.com/ferreirogomes/contatos/services"
)

type Payments interface {
	Send(ctx context.Context, req services.SendRequest) (services.SendResult, error)
	SendTemplate(ctx context.Context, sender, templateID string) (services.SendResult, error)
}

// PendingSigner é a ponte com a carteira externa; *services.ExternalSigner implementa.
type PendingSigner interface {
	Pending(wallet string) []services.PendingSignature
	Complete(id, signedTxBase64 string) error
	Reject(id string, walletErr *services.WalletError) error
}

// Cluster agrupa os serviços ligados a um cluster Solana.
type Cluster struct {
	Balances services.BalanceFetcher
	Payments Payments
	External PendingSigner // nil quando o signer é uma chave local
}

// PaymentHandler lida com saldos, validação de endereços e envios. O cluster
// usado em cada requisição é o que está salvo nas configurações.
type PaymentHandler struct {
	Store    Store
	Clusters map[models.Network]Cluster
}

func NewPaymentHandler(store Store, clusters map[models.Network]Cluster) *PaymentHandler {
	return &PaymentHandler{Store: store, Clusters: clusters}
}

func (h *PaymentHandler) cluster(ctx context.Context) (Cluster, error) {
	network, err := h.Store.GetNetwork(ctx)
	if err != nil {
		return Cluster{}, err
	}
	c, ok := h.Clusters[network]
	if !ok {
		return Cluster{}, fmt.Errorf("rede %s não configurada", network)
	}
	return c, nil
}

// GetBalances lista SOL e tokens SPL de uma carteira.
// GET /wallets/{address}/balances
func (h *PaymentHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	owner, err := services.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := h.cluster(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	balances, err := c.Balances.FetchBalances(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// ValidateAddress informa se o texto é um endereço de carteira válido.
// GET /addresses/{address}/validate
func (h *PaymentHandler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	writeJSON(w, http.StatusOK, map[string]any{
		"address": address,
		"valid":   services.IsValidAddress(address),
	})
}

// Send envia SOL ou token e só responde depois da confirmação.
// POST /payments/send
func (h *PaymentHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req services.SendRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := h.cluster(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := c.Payments.Send(r.Context(), req)
	if err != nil {
		if result.Signature != "" {
			w.Header().Set("X-Transaction-Signature", result.Signature)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UseTemplate envia o preset salvo para o contato do template.
// POST /templates/{id}/use
func (h *PaymentHandler) UseTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender string `json:"sender"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := h.cluster(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := c.Payments.SendTemplate(r.Context(), req.Sender, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListPending lista as transações aguardando assinatura da carteira.
// GET /payments/pending?wallet=...
func (h *PaymentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	c, err := h.cluster(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if c.External == nil {
		writeJSON(w, http.StatusOK, []services.PendingSignature{})
		return
	}
	writeJSON(w, http.StatusOK, c.External.Pending(r.URL.Query().Get("wallet")))
}

type resolvePendingRequest struct {
	SignedTransaction string                `json:"signed_transaction"`
	Error             *services.WalletError `json:"error"`
}

// ResolvePending devolve a transação assinada pela carteira, ou o erro que ela reportou.
// POST /payments/pending/{id}
func (h *PaymentHandler) ResolvePending(w http.ResponseWriter, r *http.Request) {
	var req resolvePendingRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := h.cluster(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if c.External == nil {
		writeError(w, services.ErrPendingNotFound)
		return
	}

	id := chi.URLParam(r, "id")
	switch {
	case req.Error != nil:
		err = c.External.Reject(id, req.Error)
	case req.SignedTransaction != "":
		err = c.External.Complete(id, req.SignedTransaction)
	default:
		http.Error(w, "signed_transaction ou error é obrigatório", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
