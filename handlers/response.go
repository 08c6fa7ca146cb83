package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ferreirogomes/contatos/logger"
	"github.com/ferreirogomes/contatos/services"
	"github.com/ferreirogomes/contatos/storage"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"` // Texto para o usuário quando a carteira falha
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("Falha ao escrever resposta")
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrMissingSourceAccount),
		errors.Is(err, services.ErrUnsupportedTokenProgram),
		errors.Is(err, services.ErrAssetNotFound),
		errors.Is(err, services.ErrSignedTxMismatch),
		errors.Is(err, storage.ErrInvalidTemplate):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrContactNotFound),
		errors.Is(err, storage.ErrTemplateNotFound),
		errors.Is(err, services.ErrPendingNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrSendInProgress):
		return http.StatusConflict
	case errors.Is(err, services.ErrBalanceFetchFailed),
		errors.Is(err, services.ErrSubmissionFailed),
		errors.Is(err, services.ErrConfirmationFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var walletErr *services.WalletError
	if errors.As(err, &walletErr) {
		resp.Message = services.WalletConnectMessage(err)
	}
	if status == http.StatusInternalServerError {
		logger.GetLogger().Error().Err(err).Msg("Erro inesperado")
	}
	writeJSON(w, status, resp)
}
