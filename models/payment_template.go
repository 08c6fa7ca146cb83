package models

// PaymentTemplate é um preset reutilizável de envio para um contato.
type PaymentTemplate struct {
	ID         string `json:"id" db:"id"`
	ContactID  string `json:"contact_id" db:"contact_id"`
	Label      string `json:"label" db:"label"`
	AssetID    string `json:"asset_id" db:"asset_id"`
	AmountRaw  string `json:"amount_raw" db:"amount_raw"` // Inteiro não negativo em string
	Memo       string `json:"memo,omitempty" db:"memo"`
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
	LastUsedAt *int64 `json:"last_used_at,omitempty" db:"last_used_at"`
}
