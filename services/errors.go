package services

import "errors"

// Erros terminais de uma tentativa de envio. Nenhum é retentado automaticamente:
// tentar de novo significa reconstruir a transação do zero.
var (
	ErrInvalidAmount           = errors.New("valor inválido")
	ErrInvalidAddress          = errors.New("endereço inválido")
	ErrInsufficientBalance     = errors.New("saldo insuficiente")
	ErrMissingSourceAccount    = errors.New("conta de token de origem ausente")
	ErrUnsupportedTokenProgram = errors.New("programa de token não suportado para envio")
	ErrBalanceFetchFailed      = errors.New("falha ao consultar saldos")
	ErrSubmissionFailed        = errors.New("falha ao assinar ou enviar transação")
	ErrConfirmationFailed      = errors.New("falha ao confirmar transação")
	ErrSendInProgress          = errors.New("já existe um envio em andamento para esta carteira")
	ErrAssetNotFound           = errors.New("ativo não encontrado na carteira")
)
