package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ferreirogomes/contatos/models"
)

func (d *DB) GetProfile(ctx context.Context) (models.UserProfile, bool, error) {
	var profile models.UserProfile
	err := d.GetContext(ctx, &profile, d.Rebind(`SELECT id, name, phone_number, wallet_address, skr_address, avatar_uri, updated_at
		FROM user_profile WHERE id = ?`), models.ProfileID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, false, nil
	}
	if err != nil {
		return models.UserProfile{}, false, fmt.Errorf("falha ao buscar perfil: %w", err)
	}
	return profile, true, nil
}

// SaveProfile grava (upsert) o único perfil do aparelho.
func (d *DB) SaveProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	profile.ID = models.ProfileID
	profile.UpdatedAt = d.nowMillis()

	query := `INSERT INTO user_profile (id, name, phone_number, wallet_address, skr_address, avatar_uri, updated_at)
		VALUES (:id, :name, :phone_number, :wallet_address, :skr_address, :avatar_uri, :updated_at)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, phone_number = excluded.phone_number,
			wallet_address = excluded.wallet_address, skr_address = excluded.skr_address,
			avatar_uri = excluded.avatar_uri, updated_at = excluded.updated_at`
	if _, err := d.NamedExecContext(ctx, query, profile); err != nil {
		return models.UserProfile{}, fmt.Errorf("falha ao salvar perfil: %w", err)
	}
	return profile, nil
}
