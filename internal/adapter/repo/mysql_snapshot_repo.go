package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/duality-2/SilkRoad/internal/usecase"
)

// Schema expected by MySQLSnapshotRepo. EnsureSchema creates it on start-up.
const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS kv_snapshots (
    k          VARCHAR(191) NOT NULL PRIMARY KEY,
    v          MEDIUMBLOB   NOT NULL,
    updated_at DATETIME(3)  NOT NULL
)`

type MySQLSnapshotRepo struct{ db *sql.DB }

func NewMySQLSnapshotRepo(db *sql.DB) *MySQLSnapshotRepo { return &MySQLSnapshotRepo{db: db} }

func (r *MySQLSnapshotRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("create kv_snapshots: %w", err)
	}
	return nil
}

func (r *MySQLSnapshotRepo) Load(ctx context.Context, key string) ([]byte, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT v FROM kv_snapshots WHERE k=?`, key)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return blob, true, nil
}

func (r *MySQLSnapshotRepo) Save(ctx context.Context, key string, blob []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO kv_snapshots (k,v,updated_at)
VALUES (?,?,NOW(3))
ON DUPLICATE KEY UPDATE v=VALUES(v), updated_at=VALUES(updated_at)
`, key, blob)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

var _ usecase.SnapshotStore = (*MySQLSnapshotRepo)(nil)
