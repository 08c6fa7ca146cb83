package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferreirogomes/contatos/models"
)

const contactColumns = `id, name, phone_number, wallet_address, skr_address, avatar_uri, notes, added_via, created_at, updated_at`

func (d *DB) AddContact(ctx context.Context, contact models.Contact) error {
	if contact.AddedVia == "" {
		contact.AddedVia = models.AddedViaManual
	}
	query := `INSERT INTO contacts (` + contactColumns + `)
		VALUES (:id, :name, :phone_number, :wallet_address, :skr_address, :avatar_uri, :notes, :added_via, :created_at, :updated_at)`
	if _, err := d.NamedExecContext(ctx, query, contact); err != nil {
		return fmt.Errorf("falha ao salvar contato: %w", err)
	}
	return nil
}

// GetContact devolve o contato e se ele foi encontrado.
func (d *DB) GetContact(ctx context.Context, id string) (models.Contact, bool, error) {
	var contact models.Contact
	err := d.GetContext(ctx, &contact, d.Rebind(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Contact{}, false, nil
	}
	if err != nil {
		return models.Contact{}, false, fmt.Errorf("falha ao buscar contato: %w", err)
	}
	return contact, true, nil
}

// ListContacts lista todos os contatos por nome.
func (d *DB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if err := d.SelectContext(ctx, &contacts, `SELECT `+contactColumns+` FROM contacts ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("falha ao listar contatos: %w", err)
	}
	return contacts, nil
}

func (d *DB) UpdateContact(ctx context.Context, contact models.Contact) error {
	query := `UPDATE contacts SET name = :name, phone_number = :phone_number, wallet_address = :wallet_address,
		skr_address = :skr_address, avatar_uri = :avatar_uri, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	res, err := d.NamedExecContext(ctx, query, contact)
	if err != nil {
		return fmt.Errorf("falha ao atualizar contato: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrContactNotFound
	}
	return nil
}

// DeleteContact remove o contato e, na mesma transação, os templates dele.
func (d *DB) DeleteContact(ctx context.Context, id string) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM payment_templates WHERE contact_id = ?`), id); err != nil {
		return fmt.Errorf("falha ao remover templates do contato: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM contacts WHERE id = ?`), id); err != nil {
		return fmt.Errorf("falha ao remover contato: %w", err)
	}
	return tx.Commit()
}
