package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferreirogomes/contatos/models"
)

const networkKey = "network"

// GetNetwork devolve o cluster salvo, ou devnet se nada foi salvo.
func (d *DB) GetNetwork(ctx context.Context) (models.Network, error) {
	var value string
	err := d.GetContext(ctx, &value, d.Rebind(`SELECT value FROM app_settings WHERE key = ?`), networkKey)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultNetwork, nil
	}
	if err != nil {
		return "", fmt.Errorf("falha ao ler rede: %w", err)
	}
	return models.ParseNetwork(value), nil
}

func (d *DB) SetNetwork(ctx context.Context, network models.Network) error {
	query := d.Rebind(`INSERT INTO app_settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := d.ExecContext(ctx, query, networkKey, string(models.ParseNetwork(string(network))), d.nowMillis()); err != nil {
		return fmt.Errorf("falha ao salvar rede: %w", err)
	}
	return nil
}
