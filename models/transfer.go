package models

import "time"

// TransferRequest é efêmero: montado a cada tentativa de envio e descartado depois.
type TransferRequest struct {
	Sender    string       `json:"sender"`
	Recipient string       `json:"recipient"`
	Asset     AssetBalance `json:"asset"`
	Amount    string       `json:"amount"` // Valor decimal digitado pelo usuário
	Memo      string       `json:"memo,omitempty"`
}

// Status de um evento de transferência.
const (
	TransferConfirmed = "confirmed"
	TransferFailed    = "failed"
)

// TransferEvent é publicado depois de cada tentativa de envio.
type TransferEvent struct {
	Signature  string    `json:"signature,omitempty"`
	Network    Network   `json:"network"`
	Sender     string    `json:"sender"`
	Recipient  string    `json:"recipient"`
	AssetID    string    `json:"asset_id"`
	AmountRaw  string    `json:"amount_raw"`
	Memo       string    `json:"memo,omitempty"`
	ContactID  string    `json:"contact_id,omitempty"`
	TemplateID string    `json:"template_id,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
