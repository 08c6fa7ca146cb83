package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/contatos/models"
	"github.com/ferreirogomes/contatos/services"
)

// MockLedger é uma implementação mock do services.LedgerClient.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetBalance(ctx context.Context, publicKey solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	args := m.Called(ctx, publicKey, commitment)
	res, _ := args.Get(0).(*rpc.GetBalanceResult)
	return res, args.Error(1)
}

// GetTokenAccountsByOwner recebe o program id por valor para facilitar o casamento no mock.
func (m *MockLedger) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error) {
	args := m.Called(ctx, owner, *conf.ProgramId)
	res, _ := args.Get(0).(*rpc.GetTokenAccountsResult)
	return res, args.Error(1)
}

func (m *MockLedger) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	args := m.Called(ctx, commitment)
	res, _ := args.Get(0).(*rpc.GetLatestBlockhashResult)
	return res, args.Error(1)
}

func (m *MockLedger) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, account)
	res, _ := args.Get(0).(*rpc.GetAccountInfoResult)
	return res, args.Error(1)
}

var _ services.LedgerClient = (*MockLedger)(nil)

// fakeSigner guarda a transação recebida e devolve uma assinatura fixa.
type fakeSigner struct {
	signature solana.Signature
	err       error

	calls   int
	tx      *solana.Transaction
	minSlot uint64
}

func (f *fakeSigner) SignAndSend(ctx context.Context, tx *solana.Transaction, minContextSlot uint64) (solana.Signature, error) {
	f.calls++
	f.tx = tx
	f.minSlot = minContextSlot
	return f.signature, f.err
}

type fakeConfirmer struct {
	err error

	calls     int
	signature solana.Signature
	lastValid uint64
}

func (f *fakeConfirmer) Confirm(ctx context.Context, signature solana.Signature, lastValidBlockHeight uint64) error {
	f.calls++
	f.signature = signature
	f.lastValid = lastValidBlockHeight
	return f.err
}

type tokenEntry struct {
	account  solana.PublicKey
	mint     string
	amount   string
	decimals int
}

// tokenAccounts monta uma resposta jsonParsed como a do RPC real.
func tokenAccounts(t *testing.T, entries ...tokenEntry) *rpc.GetTokenAccountsResult {
	t.Helper()
	value := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		value = append(value, map[string]any{
			"pubkey": e.account.String(),
			"account": map[string]any{
				"lamports":   2039280,
				"owner":      solana.TokenProgramID.String(),
				"executable": false,
				"rentEpoch":  0,
				"data": map[string]any{
					"program": "spl-token",
					"space":   165,
					"parsed": map[string]any{
						"type": "account",
						"info": map[string]any{
							"mint":  e.mint,
							"state": "initialized",
							"tokenAmount": map[string]any{
								"amount":   e.amount,
								"decimals": e.decimals,
							},
						},
					},
				},
			},
		})
	}
	raw, err := json.Marshal(map[string]any{
		"context": map[string]any{"slot": 1},
		"value":   value,
	})
	require.NoError(t, err)

	var result rpc.GetTokenAccountsResult
	require.NoError(t, json.Unmarshal(raw, &result))
	return &result
}

func latestBlockhash(slot, lastValid uint64) *rpc.GetLatestBlockhashResult {
	return &rpc.GetLatestBlockhashResult{
		RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: slot}},
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            solana.Hash{1, 2, 3},
			LastValidBlockHeight: lastValid,
		},
	}
}

func nativeBalance(lamports int64) models.AssetBalance {
	return models.AssetBalance{
		AssetID:   models.NativeAssetID,
		Symbol:    models.NativeAssetID,
		AmountRaw: bigInt(lamports),
		Decimals:  models.NativeDecimals,
		IsNative:  true,
	}
}
