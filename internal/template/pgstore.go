package template

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"clipforge/internal/httpkit"
	"clipforge/internal/pkg/errors"
)

// PGStore persists templates in Postgres. Rows carry the output spec and
// per-type defaults as jsonb, mirroring the file layout.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, t *Template) error {
	outputJSON, err := json.Marshal(t.Output)
	if err != nil {
		return errors.Wrap(err, "template.create", "failed to encode template output")
	}
	defaultsJSON, err := json.Marshal(t.Defaults)
	if err != nil {
		return errors.Wrap(err, "template.create", "failed to encode template defaults")
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO templates (id, name, output_json, defaults_json)
		VALUES ($1,$2,$3::jsonb,$4::jsonb)
		RETURNING created_at
	`, t.ID, t.Name, outputJSON, defaultsJSON).Scan(&t.CreatedAt)

	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return ErrNameExists
		}
		return errors.Wrap(err, "template.create", "db insert failed")
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Template, error) {
	var (
		t            Template
		outputJSON   []byte
		defaultsJSON []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, name, output_json, defaults_json, created_at
		FROM templates
		WHERE id=$1 AND deleted_at IS NULL
	`, id).Scan(&t.ID, &t.Name, &outputJSON, &defaultsJSON, &t.CreatedAt)
	if err != nil {
		return nil, ErrNotFound
	}

	if err := json.Unmarshal(outputJSON, &t.Output); err != nil {
		return nil, errors.Wrap(err, "template.get", "corrupt template output")
	}
	if err := json.Unmarshal(defaultsJSON, &t.Defaults); err != nil {
		return nil, errors.Wrap(err, "template.get", "corrupt template defaults")
	}
	return &t, nil
}

func (s *PGStore) List(ctx context.Context) ([]Template, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, output_json, defaults_json, created_at
		FROM templates
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "template.list", "db query failed")
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var (
			t            Template
			outputJSON   []byte
			defaultsJSON []byte
		)
		if err := rows.Scan(&t.ID, &t.Name, &outputJSON, &defaultsJSON, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "template.list", "row scan failed")
		}
		_ = json.Unmarshal(outputJSON, &t.Output)
		_ = json.Unmarshal(defaultsJSON, &t.Defaults)
		out = append(out, t)
	}
	return out, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	cmd, err := s.db.Exec(ctx, `
		UPDATE templates
		SET deleted_at=now()
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return errors.Wrap(err, "template.delete", "db delete failed")
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
