package handlers

import (
	"net/http"
	"strings"

	"github.com/ferreirogomes/contatos/models"
	"github.com/ferreirogomes/contatos/services"
)

// UserHandler lida com o perfil do usuário do aparelho e as configurações do app.
type UserHandler struct {
	Store Store
}

func NewUserHandler(store Store) *UserHandler {
	return &UserHandler{Store: store}
}

// GetProfile devolve o perfil salvo, ou um perfil vazio se ainda não existe.
// GET /profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, found, err := h.Store.GetProfile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		profile = models.UserProfile{ID: models.ProfileID}
	}
	writeJSON(w, http.StatusOK, profile)
}

// SaveProfile cria ou atualiza o perfil.
// PUT /profile
func (h *UserHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := decodeJSON(r, &profile); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	profile.WalletAddress = strings.TrimSpace(profile.WalletAddress)
	if profile.WalletAddress != "" && !services.IsValidAddress(profile.WalletAddress) {
		writeError(w, services.ErrInvalidAddress)
		return
	}

	saved, err := h.Store.SaveProfile(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type networkResponse struct {
	Network models.Network `json:"network"`
	Label   string         `json:"label"`
}

// GetNetwork devolve a rede ativa.
// GET /settings/network
func (h *UserHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	network, err := h.Store.GetNetwork(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, networkResponse{Network: network, Label: network.Label()})
}

// SetNetwork troca a rede ativa. Valores desconhecidos viram devnet.
// PUT /settings/network
func (h *UserHandler) SetNetwork(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Network string `json:"network"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	network := models.ParseNetwork(req.Network)
	if err := h.Store.SetNetwork(r.Context(), network); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, networkResponse{Network: network, Label: network.Label()})
}
