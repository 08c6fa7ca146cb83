package models

import (
	"encoding/json"
	"math/big"
)

// NativeAssetID é o identificador sentinela do ativo nativo (SOL).
const NativeAssetID = "SOL"

// NativeDecimals é a precisão do SOL (lamports).
const NativeDecimals = 9

// AssetBalance representa um ativo gastável de uma conta.
// AmountRaw nunca é float: saldos da ledger não podem perder precisão.
type AssetBalance struct {
	AssetID              string   `json:"asset_id"` // NativeAssetID ou o endereço do mint
	Symbol               string   `json:"symbol"`
	AmountRaw            *big.Int `json:"-"`
	AmountUi             string   `json:"amount_ui"`
	Decimals             int      `json:"decimals"`
	IsNative             bool     `json:"is_native"`
	SourceAccountAddress string   `json:"source_account_address,omitempty"` // Conta de token que guarda o saldo
	TokenProgramID       string   `json:"token_program_id,omitempty"`
}

// MarshalJSON serializa AmountRaw como string decimal para não perder precisão em clientes JS.
func (b AssetBalance) MarshalJSON() ([]byte, error) {
	type alias AssetBalance
	raw := "0"
	if b.AmountRaw != nil {
		raw = b.AmountRaw.String()
	}
	return json.Marshal(struct {
		alias
		AmountRaw string `json:"amount_raw"`
	}{alias: alias(b), AmountRaw: raw})
}

// FindAsset procura um ativo pelo identificador numa lista agregada.
func FindAsset(balances []AssetBalance, assetID string) (AssetBalance, bool) {
	for _, b := range balances {
		if b.AssetID == assetID {
			return b, true
		}
	}
	return AssetBalance{}, false
}
