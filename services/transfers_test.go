package services_test

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/contatos/services"
)

// programsOf devolve o programa de cada instrução, na ordem da transação.
func programsOf(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	programs := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		program, err := tx.ResolveProgramIDIndex(ix.ProgramIDIndex)
		require.NoError(t, err)
		programs = append(programs, program)
	}
	return programs
}

func newTransferService(ledger *MockLedger) (*services.TransferService, *fakeSigner, *fakeConfirmer) {
	signer := &fakeSigner{signature: solana.Signature{7, 7, 7}}
	confirmer := &fakeConfirmer{}
	return services.NewTransferService(ledger, signer, confirmer), signer, confirmer
}

// TestSendNative verifica o envio de 0.5 SOL: uma instrução de transferência com 500000000 lamports.
func TestSendNative(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(latestBlockhash(77, 500), nil).Once()
	service, signer, confirmer := newTransferService(ledger)

	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()

	signature, err := service.SendNative(context.Background(), sender, recipient, "0.5", "")
	require.NoError(t, err)
	assert.Equal(t, solana.Signature{7, 7, 7}, signature)

	require.NotNil(t, signer.tx)
	assert.Equal(t, []solana.PublicKey{solana.SystemProgramID}, programsOf(t, signer.tx))
	assert.Equal(t, sender, signer.tx.Message.AccountKeys[0], "remetente paga as taxas")
	assert.Equal(t, solana.Hash{1, 2, 3}, signer.tx.Message.RecentBlockhash)
	assert.Equal(t, uint64(77), signer.minSlot)

	data := signer.tx.Message.Instructions[0].Data
	require.Len(t, data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[:4]))
	assert.Equal(t, uint64(500000000), binary.LittleEndian.Uint64(data[4:]))

	assert.Equal(t, 1, confirmer.calls)
	assert.Equal(t, signature, confirmer.signature)
	assert.Equal(t, uint64(500), confirmer.lastValid)
	ledger.AssertExpectations(t)
}

// TestSendNativeWithMemo verifica que o memo vira uma segunda instrução.
func TestSendNativeWithMemo(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(latestBlockhash(1, 10), nil)
	service, signer, _ := newTransferService(ledger)

	_, err := service.SendNative(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), "1", "  almoço  ")
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{solana.SystemProgramID, solana.MemoProgramID}, programsOf(t, signer.tx))
	assert.Equal(t, []byte("almoço"), []byte(signer.tx.Message.Instructions[1].Data))
}

// TestSendNativeRejectsInvalidAmounts verifica que nada vai para a rede com valor inválido.
func TestSendNativeRejectsInvalidAmounts(t *testing.T) {
	ledger := new(MockLedger)
	service, signer, _ := newTransferService(ledger)

	for _, amount := range []string{"0", "0.0000000001", "-1", "abc", ""} {
		_, err := service.SendNative(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), amount, "")
		assert.ErrorIs(t, err, services.ErrInvalidAmount, "amount %q", amount)
	}
	assert.Equal(t, 0, signer.calls)
	ledger.AssertNotCalled(t, "GetLatestBlockhash", mock.Anything, mock.Anything)
}

func tokenRequest(sender, recipient solana.PublicKey, mint, source solana.PublicKey) services.TokenTransfer {
	return services.TokenTransfer{
		Sender:               sender,
		RecipientOwner:       recipient,
		AssetID:              mint.String(),
		SourceAccountAddress: source.String(),
		AmountUi:             "1.5",
		Decimals:             2,
	}
}

// TestSendTokenCreatesMissingATA verifica criação da ATA, transferência e memo, nessa ordem.
func TestSendTokenCreatesMissingATA(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	source := solana.NewWallet().PublicKey()
	destination, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	require.NoError(t, err)

	ledger := new(MockLedger)
	ledger.On("GetAccountInfoWithOpts", mock.Anything, destination).Return(nil, rpc.ErrNotFound).Once()
	ledger.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(latestBlockhash(5, 50), nil).Once()
	service, signer, confirmer := newTransferService(ledger)

	req := tokenRequest(sender, recipient, mint, source)
	req.Memo = "aluguel"
	signature, err := service.SendToken(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, signature.IsZero())

	assert.Equal(t,
		[]solana.PublicKey{solana.SPLAssociatedTokenAccountProgramID, solana.TokenProgramID, solana.MemoProgramID},
		programsOf(t, signer.tx))

	transfer := signer.tx.Message.Instructions[1].Data
	require.Len(t, transfer, 9)
	assert.Equal(t, byte(3), transfer[0])
	assert.Equal(t, uint64(150), binary.LittleEndian.Uint64(transfer[1:]))

	has, err := signer.tx.HasAccount(destination)
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, 1, confirmer.calls)
	ledger.AssertExpectations(t)
}

// TestSendTokenExistingATA verifica que a ATA existente dispensa a instrução de criação.
func TestSendTokenExistingATA(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	destination, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	require.NoError(t, err)

	ledger := new(MockLedger)
	ledger.On("GetAccountInfoWithOpts", mock.Anything, destination).
		Return(&rpc.GetAccountInfoResult{Value: &rpc.Account{Owner: solana.TokenProgramID}}, nil)
	ledger.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(latestBlockhash(5, 50), nil)
	service, signer, _ := newTransferService(ledger)

	_, err = service.SendToken(context.Background(), tokenRequest(sender, recipient, mint, solana.NewWallet().PublicKey()))
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{solana.TokenProgramID}, programsOf(t, signer.tx))
}

// TestSendTokenValidation verifica os erros que não chegam à rede.
func TestSendTokenValidation(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	source := solana.NewWallet().PublicKey()

	ledger := new(MockLedger)
	service, signer, _ := newTransferService(ledger)
	ctx := context.Background()

	req := tokenRequest(sender, recipient, mint, source)
	req.SourceAccountAddress = ""
	_, err := service.SendToken(ctx, req)
	assert.ErrorIs(t, err, services.ErrMissingSourceAccount)

	req = tokenRequest(sender, recipient, mint, source)
	req.AmountUi = "0"
	_, err = service.SendToken(ctx, req)
	assert.ErrorIs(t, err, services.ErrInvalidAmount)

	req = tokenRequest(sender, recipient, mint, source)
	req.TokenProgramID = solana.Token2022ProgramID.String()
	_, err = service.SendToken(ctx, req)
	assert.ErrorIs(t, err, services.ErrUnsupportedTokenProgram)

	req = tokenRequest(sender, recipient, mint, source)
	req.AssetID = "mint-inválido"
	_, err = service.SendToken(ctx, req)
	assert.ErrorIs(t, err, services.ErrInvalidAddress)

	assert.Equal(t, 0, signer.calls)
}

// TestSendTokenDestinationLookupFailure verifica que a falha na consulta da ATA aborta o envio.
func TestSendTokenDestinationLookupFailure(t *testing.T) {
	recipient := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	destination, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	require.NoError(t, err)

	ledger := new(MockLedger)
	ledger.On("GetAccountInfoWithOpts", mock.Anything, destination).Return(nil, errors.New("timeout"))
	service, signer, _ := newTransferService(ledger)

	_, err = service.SendToken(context.Background(), tokenRequest(solana.NewWallet().PublicKey(), recipient, mint, solana.NewWallet().PublicKey()))
	assert.ErrorIs(t, err, services.ErrSubmissionFailed)
	assert.Equal(t, 0, signer.calls)
}

// TestSubmitErrors verifica a classificação dos erros de assinatura e confirmação.
func TestSubmitErrors(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	ctx := context.Background()

	t.Run("blockhash", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(nil, errors.New("boom"))
		service, signer, _ := newTransferService(ledger)

		_, err := service.SendNative(ctx, sender, recipient, "1", "")
		assert.ErrorIs(t, err, services.ErrSubmissionFailed)
		assert.Equal(t, 0, signer.calls)
	})

	t.Run("wallet rejected", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(latestBlockhash(1, 10), nil)
		service, signer, confirmer := newTransferService(ledger)
		signer.err = &services.WalletError{Code: "ERROR_AUTHORIZATION_FAILED"}

		_, err := service.SendNative(ctx, sender, recipient, "1", "")
		assert.ErrorIs(t, err, services.ErrSubmissionFailed)
		var walletErr *services.WalletError
		assert.ErrorAs(t, err, &walletErr)
		assert.Equal(t, 0, confirmer.calls)
	})

	t.Run("empty signature", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(latestBlockhash(1, 10), nil)
		service, signer, confirmer := newTransferService(ledger)
		signer.signature = solana.Signature{}

		_, err := service.SendNative(ctx, sender, recipient, "1", "")
		assert.ErrorIs(t, err, services.ErrSubmissionFailed)
		assert.Equal(t, 0, confirmer.calls)
	})

	t.Run("confirmation", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetLatestBlockhash", mock.Anything, rpc.CommitmentFinalized).Return(latestBlockhash(1, 10), nil)
		service, _, confirmer := newTransferService(ledger)
		confirmer.err = errors.New("blockhash expirado")

		signature, err := service.SendNative(ctx, sender, recipient, "1", "")
		assert.ErrorIs(t, err, services.ErrConfirmationFailed)
		assert.Equal(t, solana.Signature{7, 7, 7}, signature, "assinatura é devolvida para consulta posterior")
	})
}

func TestBuildTokenInstructionsOrder(t *testing.T) {
	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	source := solana.NewWallet().PublicKey()
	destination := solana.NewWallet().PublicKey()

	ixs := services.BuildTokenInstructions(sender, recipient, mint, source, destination, 10, false, "")
	require.Len(t, ixs, 2)
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ixs[0].ProgramID())
	assert.Equal(t, solana.TokenProgramID, ixs[1].ProgramID())

	ixs = services.BuildTokenInstructions(sender, recipient, mint, source, destination, 10, true, " ")
	require.Len(t, ixs, 1)
	assert.Equal(t, solana.TokenProgramID, ixs[0].ProgramID())
}
