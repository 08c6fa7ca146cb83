package models

// Origem do cadastro de um contato.
const (
	AddedViaManual = "manual"
	AddedViaQR     = "qr"
)

// Contact é um contato da agenda. Timestamps em milissegundos (epoch).
type Contact struct {
	ID            string `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	PhoneNumber   string `json:"phone_number,omitempty" db:"phone_number"`
	WalletAddress string `json:"wallet_address,omitempty" db:"wallet_address"`
	SkrAddress    string `json:"skr_address,omitempty" db:"skr_address"` // Handle on-chain (.skr)
	AvatarURI     string `json:"avatar_uri,omitempty" db:"avatar_uri"`
	Notes         string `json:"notes,omitempty" db:"notes"`
	AddedVia      string `json:"added_via" db:"added_via"`
	CreatedAt     int64  `json:"created_at" db:"created_at"`
	UpdatedAt     int64  `json:"updated_at" db:"updated_at"`
}

// ProfileID é o id fixo do único registro de perfil.
const ProfileID = "me"

// UserProfile é o perfil do próprio usuário do aparelho.
type UserProfile struct {
	ID            string `json:"id" db:"id"`
	Name          string `json:"name,omitempty" db:"name"`
	PhoneNumber   string `json:"phone_number,omitempty" db:"phone_number"`
	WalletAddress string `json:"wallet_address,omitempty" db:"wallet_address"`
	SkrAddress    string `json:"skr_address,omitempty" db:"skr_address"`
	AvatarURI     string `json:"avatar_uri,omitempty" db:"avatar_uri"`
	UpdatedAt     int64  `json:"updated_at" db:"updated_at"`
}
