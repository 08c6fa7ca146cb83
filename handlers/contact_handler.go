package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ferreirogomes/contatos/models"
	"github.com/ferreirogomes/contatos/services"
	"github.com/ferreirogomes/contatos/storage"
)

// ContactHandler lida com a agenda de contatos e os templates de cada contato.
type ContactHandler struct {
	Store Store
}

func NewContactHandler(store Store) *ContactHandler {
	return &ContactHandler{Store: store}
}

type contactRequest struct {
	Name          string `json:"name"`
	PhoneNumber   string `json:"phone_number"`
	WalletAddress string `json:"wallet_address"`
	SkrAddress    string `json:"skr_address"`
	AvatarURI     string `json:"avatar_uri"`
	Notes         string `json:"notes"`
	AddedVia      string `json:"added_via"`
}

func (req *contactRequest) normalize() error {
	req.Name = strings.TrimSpace(req.Name)
	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	if req.Name == "" {
		return fmt.Errorf("nome é obrigatório")
	}
	if req.WalletAddress != "" && !services.IsValidAddress(req.WalletAddress) {
		return fmt.Errorf("%w: %s", services.ErrInvalidAddress, req.WalletAddress)
	}
	if req.AddedVia != "" && req.AddedVia != models.AddedViaManual && req.AddedVia != models.AddedViaQR {
		return fmt.Errorf("added_via inválido: %s", req.AddedVia)
	}
	return nil
}

// CreateContact cadastra um contato.
// POST /contacts
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.normalize(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().UnixMilli()
	contact := models.Contact{
		ID:            uuid.New().String(),
		Name:          req.Name,
		PhoneNumber:   req.PhoneNumber,
		WalletAddress: req.WalletAddress,
		SkrAddress:    req.SkrAddress,
		AvatarURI:     req.AvatarURI,
		Notes:         req.Notes,
		AddedVia:      req.AddedVia,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if contact.AddedVia == "" {
		contact.AddedVia = models.AddedViaManual
	}
	if err := h.Store.AddContact(r.Context(), contact); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

// ListContacts lista os contatos em ordem alfabética.
// GET /contacts
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Store.ListContacts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// GetContact obtém um contato pelo ID.
// GET /contacts/{id}
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	contact, found, err := h.Store.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, storage.ErrContactNotFound)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// UpdateContact substitui os dados editáveis de um contato.
// PUT /contacts/{id}
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.normalize(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing, found, err := h.Store.GetContact(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, storage.ErrContactNotFound)
		return
	}

	existing.Name = req.Name
	existing.PhoneNumber = req.PhoneNumber
	existing.WalletAddress = req.WalletAddress
	existing.SkrAddress = req.SkrAddress
	existing.AvatarURI = req.AvatarURI
	existing.Notes = req.Notes
	existing.UpdatedAt = time.Now().UnixMilli()
	if err := h.Store.UpdateContact(r.Context(), existing); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

// DeleteContact remove o contato e os templates dele.
// DELETE /contacts/{id}
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type templateRequest struct {
	Label     string `json:"label"`
	AssetID   string `json:"asset_id"`
	AmountRaw string `json:"amount_raw"`
	Memo      string `json:"memo"`
}

// CreateTemplate salva um preset de envio para o contato.
// POST /contacts/{id}/templates
func (h *ContactHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().UnixMilli()
	template := models.PaymentTemplate{
		ID:        uuid.New().String(),
		ContactID: chi.URLParam(r, "id"),
		Label:     strings.TrimSpace(req.Label),
		AssetID:   strings.TrimSpace(req.AssetID),
		AmountRaw: strings.TrimSpace(req.AmountRaw),
		Memo:      req.Memo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Store.AddTemplate(r.Context(), template); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, template)
}

// ListTemplates lista os templates do contato, os usados mais recentemente primeiro.
// GET /contacts/{id}/templates
func (h *ContactHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Store.ListTemplatesByContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// GetTemplate obtém um template pelo ID.
// GET /templates/{id}
func (h *ContactHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	template, found, err := h.Store.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, storage.ErrTemplateNotFound)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// DeleteTemplate remove um template.
// DELETE /templates/{id}
func (h *ContactHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ParseContactQR interpreta o conteúdo lido de um QR code.
// POST /contacts/qr/parse
func (h *ContactHandler) ParseContactQR(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data string `json:"data"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	card, ok := services.ParseContactQRData(req.Data)
	if !ok {
		http.Error(w, "QR code não contém um contato válido", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// ContactQR devolve o payload de QR do contato, pronto para ser codificado.
// GET /contacts/{id}/qr
func (h *ContactHandler) ContactQR(w http.ResponseWriter, r *http.Request) {
	contact, found, err := h.Store.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, storage.ErrContactNotFound)
		return
	}
	writeJSON(w, http.StatusOK, services.BuildContactQRPayload(services.ContactCard{
		Name:          contact.Name,
		PhoneNumber:   contact.PhoneNumber,
		WalletAddress: contact.WalletAddress,
		SkrAddress:    contact.SkrAddress,
	}))
}

// BuildContactQR monta o payload de QR para um cartão qualquer (ex.: o próprio perfil).
// POST /contacts/qr
func (h *ContactHandler) BuildContactQR(w http.ResponseWriter, r *http.Request) {
	var card services.ContactCard
	if err := decodeJSON(r, &card); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if card.WalletAddress != "" && !services.IsValidAddress(card.WalletAddress) {
		writeError(w, fmt.Errorf("%w: %s", services.ErrInvalidAddress, card.WalletAddress))
		return
	}
	writeJSON(w, http.StatusOK, services.BuildContactQRPayload(card))
}
