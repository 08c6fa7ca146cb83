package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/contatos/models"
	"github.com/ferreirogomes/contatos/services"
)

// TestFetchBalancesMergesAccountsByMint verifica a soma de contas do mesmo mint e a ordenação.
func TestFetchBalancesMergesAccountsByMint(t *testing.T) {
	ledger := new(MockLedger)
	owner := solana.NewWallet().PublicKey()

	usdc := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	bonk := "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	emptyAccount := solana.NewWallet().PublicKey()
	fundedAccount := solana.NewWallet().PublicKey()
	bonkAccount := solana.NewWallet().PublicKey()

	ledger.On("GetBalance", mock.Anything, owner, rpc.CommitmentConfirmed).
		Return(&rpc.GetBalanceResult{Value: 1500000000}, nil).Once()
	ledger.On("GetTokenAccountsByOwner", mock.Anything, owner, solana.TokenProgramID).
		Return(tokenAccounts(t,
			tokenEntry{account: emptyAccount, mint: usdc, amount: "0", decimals: 6},
			tokenEntry{account: fundedAccount, mint: usdc, amount: "100", decimals: 6},
			tokenEntry{account: bonkAccount, mint: bonk, amount: "250000", decimals: 5},
		), nil).Once()

	aggregator := services.NewBalanceAggregator(ledger)
	balances, err := aggregator.FetchBalances(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	native := balances[0]
	assert.True(t, native.IsNative)
	assert.Equal(t, models.NativeAssetID, native.AssetID)
	assert.Equal(t, "1.5", native.AmountUi)
	assert.Equal(t, "1500000000", native.AmountRaw.String())
	assert.Empty(t, native.SourceAccountAddress)

	// "DezX...B263" < "EPjF...Dt1v"
	assert.Equal(t, bonk, balances[1].AssetID)
	assert.Equal(t, "DezX...B263", balances[1].Symbol)
	assert.Equal(t, "2.5", balances[1].AmountUi)
	assert.Equal(t, bonkAccount.String(), balances[1].SourceAccountAddress)

	merged := balances[2]
	assert.Equal(t, usdc, merged.AssetID)
	assert.Equal(t, "100", merged.AmountRaw.String())
	assert.Equal(t, "0.0001", merged.AmountUi)
	assert.Equal(t, 6, merged.Decimals)
	assert.Equal(t, fundedAccount.String(), merged.SourceAccountAddress)
	assert.Equal(t, solana.TokenProgramID.String(), merged.TokenProgramID)

	ledger.AssertExpectations(t)
}

// TestFetchBalancesKeepsFirstFundedSource verifica que uma conta vazia posterior não troca a origem.
func TestFetchBalancesKeepsFirstFundedSource(t *testing.T) {
	ledger := new(MockLedger)
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey().String()
	funded := solana.NewWallet().PublicKey()
	empty := solana.NewWallet().PublicKey()

	ledger.On("GetBalance", mock.Anything, owner, rpc.CommitmentConfirmed).
		Return(&rpc.GetBalanceResult{Value: 0}, nil)
	ledger.On("GetTokenAccountsByOwner", mock.Anything, owner, solana.TokenProgramID).
		Return(tokenAccounts(t,
			tokenEntry{account: funded, mint: mint, amount: "100", decimals: 2},
			tokenEntry{account: empty, mint: mint, amount: "0", decimals: 2},
		), nil)

	balances, err := services.NewBalanceAggregator(ledger).FetchBalances(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "1", balances[1].AmountUi)
	assert.Equal(t, funded.String(), balances[1].SourceAccountAddress)
}

// TestFetchBalancesOnlyNative verifica que uma carteira sem tokens lista só SOL.
func TestFetchBalancesOnlyNative(t *testing.T) {
	ledger := new(MockLedger)
	owner := solana.NewWallet().PublicKey()

	ledger.On("GetBalance", mock.Anything, owner, rpc.CommitmentConfirmed).
		Return(&rpc.GetBalanceResult{Value: 0}, nil)
	ledger.On("GetTokenAccountsByOwner", mock.Anything, owner, solana.TokenProgramID).
		Return(tokenAccounts(t), nil)

	balances, err := services.NewBalanceAggregator(ledger).FetchBalances(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "0", balances[0].AmountUi)
}

// TestFetchBalancesQueriesEveryConfiguredProgram verifica a consulta ao Token-2022 quando habilitado.
func TestFetchBalancesQueriesEveryConfiguredProgram(t *testing.T) {
	ledger := new(MockLedger)
	owner := solana.NewWallet().PublicKey()
	classic := solana.NewWallet().PublicKey().String()
	extended := solana.NewWallet().PublicKey().String()

	ledger.On("GetBalance", mock.Anything, owner, rpc.CommitmentConfirmed).
		Return(&rpc.GetBalanceResult{Value: 0}, nil)
	ledger.On("GetTokenAccountsByOwner", mock.Anything, owner, solana.TokenProgramID).
		Return(tokenAccounts(t, tokenEntry{account: solana.NewWallet().PublicKey(), mint: classic, amount: "1", decimals: 0}), nil).Once()
	ledger.On("GetTokenAccountsByOwner", mock.Anything, owner, solana.Token2022ProgramID).
		Return(tokenAccounts(t, tokenEntry{account: solana.NewWallet().PublicKey(), mint: extended, amount: "2", decimals: 0}), nil).Once()

	aggregator := services.NewBalanceAggregator(ledger, solana.TokenProgramID, solana.Token2022ProgramID)
	balances, err := aggregator.FetchBalances(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	extendedBalance, ok := models.FindAsset(balances, extended)
	require.True(t, ok)
	assert.Equal(t, solana.Token2022ProgramID.String(), extendedBalance.TokenProgramID)
	ledger.AssertExpectations(t)
}

// TestFetchBalancesWrapsRPCErrors verifica que falhas de rede viram ErrBalanceFetchFailed.
func TestFetchBalancesWrapsRPCErrors(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	ledger := new(MockLedger)
	ledger.On("GetBalance", mock.Anything, owner, rpc.CommitmentConfirmed).
		Return(nil, errors.New("connection refused"))
	_, err := services.NewBalanceAggregator(ledger).FetchBalances(context.Background(), owner)
	assert.ErrorIs(t, err, services.ErrBalanceFetchFailed)

	ledger = new(MockLedger)
	ledger.On("GetBalance", mock.Anything, owner, rpc.CommitmentConfirmed).
		Return(&rpc.GetBalanceResult{Value: 10}, nil)
	ledger.On("GetTokenAccountsByOwner", mock.Anything, owner, solana.TokenProgramID).
		Return(nil, errors.New("429 too many requests"))
	_, err = services.NewBalanceAggregator(ledger).FetchBalances(context.Background(), owner)
	assert.ErrorIs(t, err, services.ErrBalanceFetchFailed)
}

func TestTokenProgramFromName(t *testing.T) {
	pk, err := services.TokenProgramFromName("spl-token")
	require.NoError(t, err)
	assert.Equal(t, solana.TokenProgramID, pk)

	pk, err = services.TokenProgramFromName("token-2022")
	require.NoError(t, err)
	assert.Equal(t, solana.Token2022ProgramID, pk)

	pk, err = services.TokenProgramFromName(solana.Token2022ProgramID.String())
	require.NoError(t, err)
	assert.Equal(t, solana.Token2022ProgramID, pk)

	_, err = services.TokenProgramFromName("nope")
	assert.Error(t, err)
}
