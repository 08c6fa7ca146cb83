package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/ferreirogomes/contatos/logger"
	"github.com/ferreirogomes/contatos/metrics"
	"github.com/ferreirogomes/contatos/models"
)

// BalanceAggregator lista o saldo nativo e os tokens de uma carteira.
type BalanceAggregator struct {
	Client        LedgerClient
	TokenPrograms []solana.PublicKey
}

// NewBalanceAggregator cria o agregador; sem programas informados usa só o SPL Token clássico.
func NewBalanceAggregator(client LedgerClient, tokenPrograms ...solana.PublicKey) *BalanceAggregator {
	if len(tokenPrograms) == 0 {
		tokenPrograms = []solana.PublicKey{solana.TokenProgramID}
	}
	return &BalanceAggregator{Client: client, TokenPrograms: tokenPrograms}
}

// TokenProgramFromName resolve os nomes aceitos na configuração.
func TokenProgramFromName(name string) (solana.PublicKey, error) {
	switch name {
	case "spl-token", "token":
		return solana.TokenProgramID, nil
	case "token-2022", "spl-token-2022":
		return solana.Token2022ProgramID, nil
	}
	pk, err := solana.PublicKeyFromBase58(name)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("programa de token desconhecido %q: %w", name, err)
	}
	return pk, nil
}

// parsedTokenAccount é o formato jsonParsed de uma conta SPL Token.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals int    `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// FetchBalances agrega os saldos de owner: SOL primeiro, depois um item por mint,
// ordenado por símbolo. Contas do mesmo mint são somadas.
func (a *BalanceAggregator) FetchBalances(ctx context.Context, owner solana.PublicKey) (balances []models.AssetBalance, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBalanceFetch(start, err) }()

	solBalance, err := a.Client.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%w: saldo nativo de %s: %v", ErrBalanceFetchFailed, owner, err)
	}

	byMint := make(map[string]*models.AssetBalance)
	for _, program := range a.TokenPrograms {
		programID := program
		resp, err := a.Client.GetTokenAccountsByOwner(ctx, owner,
			&rpc.GetTokenAccountsConfig{ProgramId: &programID},
			&rpc.GetTokenAccountsOpts{Commitment: rpc.CommitmentConfirmed, Encoding: solana.EncodingJSONParsed},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: contas de token de %s: %v", ErrBalanceFetchFailed, owner, err)
		}
		if resp == nil {
			continue
		}

		for _, acc := range resp.Value {
			if acc == nil || acc.Account.Data == nil {
				continue
			}
			var parsed parsedTokenAccount
			if err := json.Unmarshal(acc.Account.Data.GetRawJSON(), &parsed); err != nil {
				return nil, fmt.Errorf("%w: conta %s ilegível: %v", ErrBalanceFetchFailed, acc.Pubkey, err)
			}
			info := parsed.Parsed.Info
			raw, ok := new(big.Int).SetString(info.TokenAmount.Amount, 10)
			if !ok || info.Mint == "" {
				return nil, fmt.Errorf("%w: conta %s com dados inválidos", ErrBalanceFetchFailed, acc.Pubkey)
			}

			if prev, seen := byMint[info.Mint]; seen {
				// Prefere como origem a conta que já tem saldo.
				if prev.AmountRaw.Sign() == 0 {
					prev.SourceAccountAddress = acc.Pubkey.String()
				}
				prev.AmountRaw = new(big.Int).Add(prev.AmountRaw, raw)
				prev.AmountUi = RawToAmountUi(prev.AmountRaw, prev.Decimals)
				continue
			}

			byMint[info.Mint] = &models.AssetBalance{
				AssetID:              info.Mint,
				Symbol:               shortSymbol(info.Mint),
				AmountRaw:            raw,
				AmountUi:             RawToAmountUi(raw, info.TokenAmount.Decimals),
				Decimals:             info.TokenAmount.Decimals,
				SourceAccountAddress: acc.Pubkey.String(),
				TokenProgramID:       programID.String(),
			}
		}
	}

	tokens := make([]models.AssetBalance, 0, len(byMint))
	for _, b := range byMint {
		tokens = append(tokens, *b)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Symbol != tokens[j].Symbol {
			return tokens[i].Symbol < tokens[j].Symbol
		}
		return tokens[i].AssetID < tokens[j].AssetID
	})

	lamports := new(big.Int).SetUint64(solBalance.Value)
	balances = make([]models.AssetBalance, 0, len(tokens)+1)
	balances = append(balances, models.AssetBalance{
		AssetID:   models.NativeAssetID,
		Symbol:    models.NativeAssetID,
		AmountRaw: lamports,
		AmountUi:  RawToAmountUi(lamports, models.NativeDecimals),
		Decimals:  models.NativeDecimals,
		IsNative:  true,
	})
	balances = append(balances, tokens...)

	logger.GetLogger().Debug().
		Str("owner", owner.String()).
		Int("assets", len(balances)).
		Msg("Saldos agregados")

	return balances, nil
}

// shortSymbol gera um rótulo "abcd...wxyz" para mints sem registro.
func shortSymbol(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + "..." + mint[len(mint)-4:]
}
