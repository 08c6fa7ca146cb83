package services

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// AmountToRaw converte um valor decimal digitado ("1,5", "0.25") em unidades inteiras.
// A parte fracionária além de decimals é truncada, nunca arredondada.
func AmountToRaw(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("%w: precisão negativa %d", ErrInvalidAmount, decimals)
	}

	normalized := strings.Replace(strings.TrimSpace(amount), ",", ".", 1)
	if !amountPattern.MatchString(normalized) {
		return nil, fmt.Errorf("%w: formato %q", ErrInvalidAmount, amount)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	return d.Truncate(int32(decimals)).Shift(int32(decimals)).BigInt(), nil
}

// RawToAmountUi formata unidades inteiras como decimal legível, sem zeros à direita.
func RawToAmountUi(raw *big.Int, decimals int) string {
	if raw == nil {
		raw = new(big.Int)
	}
	if decimals < 0 {
		decimals = 0
	}

	digits := raw.String()
	if len(digits) < decimals+1 {
		digits = strings.Repeat("0", decimals+1-len(digits)) + digits
	}

	whole := digits[:len(digits)-decimals]
	fraction := strings.TrimRight(digits[len(digits)-decimals:], "0")
	if fraction == "" {
		return whole
	}
	return whole + "." + fraction
}
