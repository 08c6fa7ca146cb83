package services

import (
	"encoding/json"
	"strings"
)

// ContactQRPayload é o cartão de contato trocado por QR code.
type ContactQRPayload struct {
	Type          string `json:"type"`
	Version       int    `json:"version"`
	Name          string `json:"name,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	SkrAddress    string `json:"skrAddress,omitempty"`
}

// ContactCard são os campos aproveitáveis de um QR lido.
type ContactCard struct {
	Name          string `json:"name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	SkrAddress    string `json:"skr_address,omitempty"`
}

func (c ContactCard) empty() bool {
	return c.Name == "" && c.PhoneNumber == "" && c.WalletAddress == "" && c.SkrAddress == ""
}

func BuildContactQRPayload(card ContactCard) ContactQRPayload {
	return ContactQRPayload{
		Type:          "contact_card",
		Version:       1,
		Name:          strings.TrimSpace(card.Name),
		PhoneNumber:   strings.TrimSpace(card.PhoneNumber),
		WalletAddress: strings.TrimSpace(card.WalletAddress),
		SkrAddress:    strings.TrimSpace(card.SkrAddress),
	}
}

// ParseContactQRData lê o conteúdo de um QR: JSON de cartão (aceitando as chaves
// curtas wallet/phone/skr) ou só um endereço de carteira. Devolve false se nada servir.
func ParseContactQRData(raw string) (ContactCard, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ContactCard{}, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		if IsValidAddress(text) {
			return ContactCard{WalletAddress: text}, true
		}
		return ContactCard{}, false
	}

	wallet := firstString(parsed, "walletAddress", "wallet")
	if wallet != "" && !IsValidAddress(wallet) {
		wallet = ""
	}

	card := ContactCard{
		Name:          firstString(parsed, "name"),
		PhoneNumber:   firstString(parsed, "phoneNumber", "phone"),
		WalletAddress: wallet,
		SkrAddress:    firstString(parsed, "skrAddress", "skr"),
	}
	if card.empty() {
		return ContactCard{}, false
	}
	return card, true
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
