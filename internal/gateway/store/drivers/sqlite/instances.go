package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/domain"
)

type instancesRepo struct {
	db *sql.DB
}

func (r *instancesRepo) GetInstance(ctx context.Context, key string) (domain.Instance, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT instance_key, connected, pairing_code, pairing_issued_at,
		       last_connected_at, created_at, updated_at
		FROM instances
		WHERE instance_key = ?`, key)

	var (
		inst      domain.Instance
		connected int64
		code      sql.NullString
		issuedAt  sql.NullInt64
		lastConn  sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&inst.Key, &connected, &code, &issuedAt, &lastConn, &createdAt, &updatedAt)
	if err != nil {
		return domain.Instance{}, mapNotFound(err)
	}

	inst.Connected = connected == 1
	inst.PairingCode = mapNullStringPtr(code)
	inst.PairingIssuedAt = mapNullUnixPtr(issuedAt)
	inst.LastConnectedAt = mapNullUnixPtr(lastConn)
	inst.CreatedAt = time.Unix(createdAt, 0).UTC()
	inst.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return inst, nil
}

func (r *instancesRepo) ListInstanceKeys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT instance_key FROM instances ORDER BY created_at ASC, instance_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *instancesRepo) UpsertInstance(ctx context.Context, key string) error {
	now := time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO instances (instance_key, connected, created_at, updated_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT (instance_key) DO NOTHING`, key, now, now)
	return err
}

func (r *instancesRepo) SetConnected(ctx context.Context, key string) error {
	// Pairing columns clear in the same statement so the connected/pairing
	// exclusion CHECK can never trip between two writes.
	now := time.Now().Unix()
	return r.exec(ctx, `
		UPDATE instances
		SET connected = 1, pairing_code = NULL, pairing_issued_at = NULL,
		    last_connected_at = ?, updated_at = ?
		WHERE instance_key = ?`, now, now, key)
}

func (r *instancesRepo) SetDisconnected(ctx context.Context, key string) error {
	return r.exec(ctx, `
		UPDATE instances
		SET connected = 0, updated_at = ?
		WHERE instance_key = ?`, time.Now().Unix(), key)
}

func (r *instancesRepo) SetPairingCode(ctx context.Context, key, code string, issuedAt time.Time) error {
	return r.exec(ctx, `
		UPDATE instances
		SET connected = 0, pairing_code = ?, pairing_issued_at = ?, updated_at = ?
		WHERE instance_key = ?`, code, issuedAt.Unix(), time.Now().Unix(), key)
}

func (r *instancesRepo) ClearPairingCode(ctx context.Context, key string) error {
	return r.exec(ctx, `
		UPDATE instances
		SET pairing_code = NULL, pairing_issued_at = NULL, updated_at = ?
		WHERE instance_key = ?`, time.Now().Unix(), key)
}

func (r *instancesRepo) DeleteInstance(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM instances WHERE instance_key = ?`, key)
	return err
}

func (r *instancesRepo) PurgeStalePairings(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE instances
		SET pairing_code = NULL, pairing_issued_at = NULL, updated_at = ?
		WHERE pairing_code IS NOT NULL AND pairing_issued_at < ?`,
		time.Now().Unix(), before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// exec runs a single-row UPDATE and maps a zero-row result to ErrNotFound so
// callers can fence on deleted instances.
func (r *instancesRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
