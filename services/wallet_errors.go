package services

import (
	"errors"
	"fmt"
	"strings"
)

// WalletError é o erro reportado pelo provedor de carteira (Mobile Wallet Adapter).
type WalletError struct {
	Name    string `json:"name,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *WalletError) Error() string {
	return WalletErrorDetails(e)
}

// WalletErrorDetails formata "Nome (código): mensagem" para logs e suporte.
func WalletErrorDetails(err error) string {
	var we *WalletError
	if !errors.As(err, &we) || we == nil {
		if err == nil {
			return "Erro de carteira desconhecido"
		}
		return err.Error()
	}
	name := we.Name
	if name == "" {
		name = "Error"
	}
	code := we.Code
	if code == "" {
		code = "unknown"
	}
	message := we.Message
	if message == "" {
		message = "Mensagem desconhecida"
	}
	return fmt.Sprintf("%s (%s): %s", name, code, message)
}

// WalletConnectMessage traduz o erro da carteira numa mensagem acionável para o usuário.
func WalletConnectMessage(err error) string {
	var we *WalletError
	if !errors.As(err, &we) || we == nil {
		return "Não foi possível conectar a uma carteira móvel."
	}

	switch {
	case we.Code == "ERROR_WALLET_NOT_FOUND":
		return "Nenhuma carteira Solana compatível encontrada. Instale ou habilite uma carteira Mobile Wallet Adapter."
	case we.Code == "ERROR_SESSION_TIMEOUT":
		return "A sessão da carteira expirou. Abra a carteira, aprove rapidamente e tente de novo."
	case we.Code == "ERROR_AUTHORIZATION_FAILED" || we.Code == "-1":
		return "A autorização da carteira foi recusada ou expirou. Aprove o pedido de conexão no app da carteira."
	case we.Code == "ERROR_ATTEST_ORIGIN_ANDROID" || we.Code == "-100":
		return "A carteira recusou a identidade do app. Use uma carteira que aceite builds de desenvolvimento."
	case we.Code == "EUNSPECIFIED" && strings.Contains(we.Message, "CancellationException"):
		return "A carteira cancelou a sessão antes da autorização. Abra a carteira, aprove rapidamente e volte ao app."
	}
	return "Não foi possível conectar a uma carteira móvel."
}
