package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	variables "github.com/mhdr/Monitoring2025-sub018/internal/variables/domain"
)

// Repository is a Postgres repository for global variables.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a variable by id. Missing rows return nil.
func (r *Repository) Get(ctx context.Context, id string) (*variables.GlobalVariable, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("variable repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, var_type, value, updated_at
FROM global_variables
WHERE id = $1`, id)

	var variable variables.GlobalVariable
	var varType string
	if err := row.Scan(&variable.ID, &variable.Name, &varType, &variable.Value, &variable.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	variable.Type = variables.VarType(varType)
	variable.UpdatedAt = variable.UpdatedAt.UTC()
	return &variable, nil
}

// Upsert stores a variable.
func (r *Repository) Upsert(ctx context.Context, variable *variables.GlobalVariable) error {
	if r == nil || r.db == nil {
		return errors.New("variable repo: nil db")
	}
	if variable == nil {
		return errors.New("variable repo: nil variable")
	}
	if variable.UpdatedAt.IsZero() {
		variable.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO global_variables (id, name, var_type, value, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	var_type = EXCLUDED.var_type,
	value = EXCLUDED.value,
	updated_at = EXCLUDED.updated_at`,
		variable.ID, variable.Name, string(variable.Type), variable.Value, variable.UpdatedAt.UTC())
	return err
}

// List returns all variables ordered by id.
func (r *Repository) List(ctx context.Context) ([]variables.GlobalVariable, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("variable repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, var_type, value, updated_at
FROM global_variables
ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []variables.GlobalVariable
	for rows.Next() {
		var variable variables.GlobalVariable
		var varType string
		if err := rows.Scan(&variable.ID, &variable.Name, &varType, &variable.Value, &variable.UpdatedAt); err != nil {
			return nil, err
		}
		variable.Type = variables.VarType(varType)
		variable.UpdatedAt = variable.UpdatedAt.UTC()
		result = append(result, variable)
	}
	return result, rows.Err()
}
