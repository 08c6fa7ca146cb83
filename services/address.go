package services

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// IsValidAddress informa se value é uma chave pública Solana válida.
// Falha é um booleano, nunca um panic: é usado como filtro antes de operações de risco.
func IsValidAddress(value string) bool {
	_, err := solana.PublicKeyFromBase58(value)
	return err == nil
}

// ParseAddress converte value numa chave pública ou devolve ErrInvalidAddress.
func ParseAddress(value string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(value))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %q", ErrInvalidAddress, value)
	}
	return pk, nil
}
