package handlers

import (
	"context"

	"github.com/ferreirogomes/contatos/models"
)

// Store é o que os handlers usam do banco local; *storage.DB implementa.
type Store interface {
	AddContact(ctx context.Context, contact models.Contact) error
	GetContact(ctx context.Context, id string) (models.Contact, bool, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	UpdateContact(ctx context.Context, contact models.Contact) error
	DeleteContact(ctx context.Context, id string) error

	AddTemplate(ctx context.Context, template models.PaymentTemplate) error
	GetTemplate(ctx context.Context, id string) (models.PaymentTemplate, bool, error)
	ListTemplatesByContact(ctx context.Context, contactID string) ([]models.PaymentTemplate, error)
	TouchTemplate(ctx context.Context, id string) error
	DeleteTemplate(ctx context.Context, id string) error

	GetProfile(ctx context.Context) (models.UserProfile, bool, error)
	SaveProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)
	GetNetwork(ctx context.Context) (models.Network, error)
	SetNetwork(ctx context.Context, network models.Network) error
}
