package models

// Network é o cluster Solana selecionado pelo usuário.
type Network string

const (
	Devnet      Network = "devnet"
	MainnetBeta Network = "mainnet-beta"
)

// DefaultNetwork é usado quando nada foi salvo.
const DefaultNetwork = Devnet

// ParseNetwork normaliza valores salvos; qualquer coisa desconhecida vira devnet.
func ParseNetwork(value string) Network {
	if Network(value) == MainnetBeta {
		return MainnetBeta
	}
	return Devnet
}

func (n Network) Label() string {
	if n == MainnetBeta {
		return "Mainnet"
	}
	return "Devnet"
}

// ExplorerTxURL devolve o link do Solana Explorer para uma assinatura.
func (n Network) ExplorerTxURL(signature string) string {
	base := "https://explorer.solana.com/tx/" + signature
	if n == MainnetBeta {
		return base
	}
	return base + "?cluster=devnet"
}
