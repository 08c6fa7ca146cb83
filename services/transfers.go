package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/ferreirogomes/contatos/logger"
	"github.com/ferreirogomes/contatos/models"
)

// Signer assina e transmite uma transação. Na prática é a carteira do usuário;
// a chamada pode ficar suspensa indefinidamente esperando aprovação.
type Signer interface {
	SignAndSend(ctx context.Context, tx *solana.Transaction, minContextSlot uint64) (solana.Signature, error)
}

// Confirmer espera a confirmação de uma assinatura até a altura de bloco em que o
// blockhash usado como âncora expira.
type Confirmer interface {
	Confirm(ctx context.Context, signature solana.Signature, lastValidBlockHeight uint64) error
}

// TransferService constrói, envia e confirma transferências de SOL e de tokens SPL.
// Não guarda estado entre chamadas: cada envio usa seu próprio blockhash.
type TransferService struct {
	Client    LedgerClient
	Signer    Signer
	Confirmer Confirmer
}

func NewTransferService(client LedgerClient, signer Signer, confirmer Confirmer) *TransferService {
	return &TransferService{Client: client, Signer: signer, Confirmer: confirmer}
}

// TokenTransfer são os parâmetros de um envio de token SPL.
type TokenTransfer struct {
	Sender               solana.PublicKey
	RecipientOwner       solana.PublicKey
	AssetID              string // Endereço do mint
	SourceAccountAddress string // Conta de token de origem (vem do AssetBalance)
	AmountUi             string
	Decimals             int
	Memo                 string
	TokenProgramID       string // Vazio significa o SPL Token clássico
}

// positiveRaw converte o valor e exige que seja > 0 e caiba num uint64.
func positiveRaw(amountUi string, decimals int) (uint64, error) {
	raw, err := AmountToRaw(amountUi, decimals)
	if err != nil {
		return 0, err
	}
	if raw.Sign() <= 0 {
		return 0, fmt.Errorf("%w: o valor deve ser maior que zero", ErrInvalidAmount)
	}
	if !raw.IsUint64() {
		return 0, fmt.Errorf("%w: valor %s excede o limite da ledger", ErrInvalidAmount, raw)
	}
	return raw.Uint64(), nil
}

// memoInstruction devolve nil quando o memo está vazio depois do trim.
// Os dados vão crus (UTF-8, sem prefixo de tamanho), como o programa de memo espera.
func memoInstruction(signer solana.PublicKey, text string) solana.Instruction {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return solana.NewInstruction(
		solana.MemoProgramID,
		solana.AccountMetaSlice{solana.Meta(signer).SIGNER()},
		[]byte(trimmed),
	)
}

// BuildNativeInstructions monta a transferência de SOL e o memo opcional.
func BuildNativeInstructions(sender, recipient solana.PublicKey, lamports uint64, memoText string) []solana.Instruction {
	instructions := []solana.Instruction{
		system.NewTransferInstruction(lamports, sender, recipient).Build(),
	}
	if ix := memoInstruction(sender, memoText); ix != nil {
		instructions = append(instructions, ix)
	}
	return instructions
}

// BuildTokenInstructions monta, em ordem: criação da ATA de destino (se ainda não existe),
// transferência SPL e memo opcional.
func BuildTokenInstructions(
	sender, recipientOwner, mint, source, destination solana.PublicKey,
	amount uint64, destinationExists bool, memoText string,
) []solana.Instruction {
	var instructions []solana.Instruction
	if !destinationExists {
		instructions = append(instructions,
			associatedtokenaccount.NewCreateInstruction(sender, recipientOwner, mint).Build())
	}
	instructions = append(instructions,
		token.NewTransferInstruction(amount, source, destination, sender, nil).Build())
	if ix := memoInstruction(sender, memoText); ix != nil {
		instructions = append(instructions, ix)
	}
	return instructions
}

// SendNative envia SOL de sender para recipient.
func (s *TransferService) SendNative(ctx context.Context, sender, recipient solana.PublicKey, amountUi, memoText string) (solana.Signature, error) {
	lamports, err := positiveRaw(amountUi, models.NativeDecimals)
	if err != nil {
		return solana.Signature{}, err
	}

	instructions := BuildNativeInstructions(sender, recipient, lamports, memoText)
	return s.submit(ctx, sender, instructions)
}

// SendToken envia tokens SPL para a conta associada (ATA) do destinatário,
// criando-a na mesma transação quando necessário.
func (s *TransferService) SendToken(ctx context.Context, req TokenTransfer) (solana.Signature, error) {
	amount, err := positiveRaw(req.AmountUi, req.Decimals)
	if err != nil {
		return solana.Signature{}, err
	}
	if strings.TrimSpace(req.SourceAccountAddress) == "" {
		return solana.Signature{}, ErrMissingSourceAccount
	}
	if req.TokenProgramID != "" && req.TokenProgramID != solana.TokenProgramID.String() {
		return solana.Signature{}, fmt.Errorf("%w: %s", ErrUnsupportedTokenProgram, req.TokenProgramID)
	}

	mint, err := ParseAddress(req.AssetID)
	if err != nil {
		return solana.Signature{}, err
	}
	source, err := ParseAddress(req.SourceAccountAddress)
	if err != nil {
		return solana.Signature{}, err
	}

	destination, _, err := solana.FindAssociatedTokenAddress(req.RecipientOwner, mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: falha ao derivar ATA de destino: %v", ErrInvalidAddress, err)
	}

	// Se outro remetente criar a ATA entre a consulta e o envio, a ledger trata a
	// criação de forma idempotente; isso não é verificado aqui.
	exists, err := s.accountExists(ctx, destination)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: falha ao consultar ATA de destino %s: %v", ErrSubmissionFailed, destination, err)
	}
	if !exists {
		logger.GetLogger().Info().
			Str("ata", destination.String()).
			Msg("ATA de destino não encontrada; incluindo instrução de criação")
	}

	instructions := BuildTokenInstructions(req.Sender, req.RecipientOwner, mint, source, destination, amount, exists, req.Memo)
	return s.submit(ctx, req.Sender, instructions)
}

func (s *TransferService) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := s.Client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info != nil && info.Value != nil, nil
}

// submit ancora a transação no blockhash finalizado mais recente, entrega à carteira
// e espera a confirmação em "confirmed".
func (s *TransferService) submit(ctx context.Context, payer solana.PublicKey, instructions []solana.Instruction) (solana.Signature, error) {
	latest, err := s.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: falha ao obter blockhash: %v", ErrSubmissionFailed, err)
	}
	if latest == nil || latest.Value == nil {
		return solana.Signature{}, fmt.Errorf("%w: resposta de blockhash vazia", ErrSubmissionFailed)
	}

	tx, err := solana.NewTransaction(instructions, latest.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: falha ao criar transação: %v", ErrSubmissionFailed, err)
	}

	signature, err := s.Signer.SignAndSend(ctx, tx, latest.Context.Slot)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if signature.IsZero() {
		return solana.Signature{}, fmt.Errorf("%w: carteira não devolveu assinatura", ErrSubmissionFailed)
	}
	logger.GetLogger().Info().Str("signature", signature.String()).Msg("Transação enviada")

	if err := s.Confirmer.Confirm(ctx, signature, latest.Value.LastValidBlockHeight); err != nil {
		return signature, fmt.Errorf("%w: %s: %w", ErrConfirmationFailed, signature, err)
	}
	logger.GetLogger().Info().Str("signature", signature.String()).Msg("Transação confirmada")

	return signature, nil
}
