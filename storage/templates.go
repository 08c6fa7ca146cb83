package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/ferreirogomes/contatos/models"
)

var rawAmountPattern = regexp.MustCompile(`^\d+$`)

const templateColumns = `id, contact_id, label, asset_id, amount_raw, memo, created_at, updated_at, last_used_at`

// AddTemplate salva um template novo. O contato precisa existir e amount_raw
// deve ser um inteiro não negativo.
func (d *DB) AddTemplate(ctx context.Context, template models.PaymentTemplate) error {
	if !rawAmountPattern.MatchString(template.AmountRaw) {
		return fmt.Errorf("%w: amount_raw %q não é um inteiro não negativo", ErrInvalidTemplate, template.AmountRaw)
	}
	if template.Label == "" || template.AssetID == "" {
		return fmt.Errorf("%w: label e asset_id são obrigatórios", ErrInvalidTemplate)
	}
	if _, found, err := d.GetContact(ctx, template.ContactID); err != nil {
		return err
	} else if !found {
		return ErrContactNotFound
	}

	query := `INSERT INTO payment_templates (` + templateColumns + `)
		VALUES (:id, :contact_id, :label, :asset_id, :amount_raw, :memo, :created_at, :updated_at, :last_used_at)`
	if _, err := d.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("falha ao salvar template: %w", err)
	}
	return nil
}

func (d *DB) GetTemplate(ctx context.Context, id string) (models.PaymentTemplate, bool, error) {
	var template models.PaymentTemplate
	err := d.GetContext(ctx, &template, d.Rebind(`SELECT `+templateColumns+` FROM payment_templates WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentTemplate{}, false, nil
	}
	if err != nil {
		return models.PaymentTemplate{}, false, fmt.Errorf("falha ao buscar template: %w", err)
	}
	return template, true, nil
}

// ListTemplatesByContact ordena pelos usados mais recentemente e depois pelos atualizados.
func (d *DB) ListTemplatesByContact(ctx context.Context, contactID string) ([]models.PaymentTemplate, error) {
	templates := []models.PaymentTemplate{}
	query := d.Rebind(`SELECT ` + templateColumns + ` FROM payment_templates
		WHERE contact_id = ?
		ORDER BY COALESCE(last_used_at, 0) DESC, updated_at DESC`)
	if err := d.SelectContext(ctx, &templates, query, contactID); err != nil {
		return nil, fmt.Errorf("falha ao listar templates: %w", err)
	}
	return templates, nil
}

// TouchTemplate marca o template como usado agora.
func (d *DB) TouchTemplate(ctx context.Context, id string) error {
	now := d.nowMillis()
	res, err := d.ExecContext(ctx, d.Rebind(`UPDATE payment_templates SET last_used_at = ?, updated_at = ? WHERE id = ?`), now, now, id)
	if err != nil {
		return fmt.Errorf("falha ao marcar template como usado: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (d *DB) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := d.ExecContext(ctx, d.Rebind(`DELETE FROM payment_templates WHERE id = ?`), id); err != nil {
		return fmt.Errorf("falha ao remover template: %w", err)
	}
	return nil
}
