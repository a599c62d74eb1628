package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	alarms "github.com/mhdr/Monitoring2025-sub018/internal/alarms/domain"
)

// DefinitionRepository is a Postgres repository for alarm definitions.
type DefinitionRepository struct {
	db *sql.DB
}

// NewDefinitionRepository constructs a repository.
func NewDefinitionRepository(db *sql.DB) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

const definitionColumns = `
	id, item_id, item_name, item_name_fa, alarm_type, compare_type,
	value1, value2, delay_seconds, timeout_seconds, priority,
	message, message_fa, on_text, off_text, on_text_fa, off_text_fa,
	is_disabled, is_deleted, created_at, updated_at`

// ListEnabled returns definitions that are neither disabled nor deleted.
func (r *DefinitionRepository) ListEnabled(ctx context.Context) ([]alarms.Definition, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alarm definition repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT`+definitionColumns+`
FROM alarm_definitions
WHERE is_disabled = FALSE AND is_deleted = FALSE
ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []alarms.Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, def)
	}
	return result, rows.Err()
}

// GetByID loads a definition by id. Missing rows return nil.
func (r *DefinitionRepository) GetByID(ctx context.Context, id string) (*alarms.Definition, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alarm definition repo: nil db")
	}
	if id == "" {
		return nil, errors.New("alarm definition repo: empty id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT`+definitionColumns+`
FROM alarm_definitions
WHERE id = $1
LIMIT 1`, id)
	def, err := scanDefinition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &def, nil
}

// Create inserts a definition.
func (r *DefinitionRepository) Create(ctx context.Context, def *alarms.Definition) error {
	if r == nil || r.db == nil {
		return errors.New("alarm definition repo: nil db")
	}
	if def == nil {
		return errors.New("alarm definition repo: nil definition")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	if def.CreatedAt.IsZero() {
		def.CreatedAt = time.Now().UTC()
	}
	if def.UpdatedAt.IsZero() {
		def.UpdatedAt = def.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO alarm_definitions (`+definitionColumns+`
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8, $9, $10, $11,
	$12, $13, $14, $15, $16, $17,
	$18, $19, $20, $21
)`, def.ID, def.ItemID, def.ItemName, def.ItemNameFa, string(def.Type), string(def.Compare),
		def.Value1, def.Value2, def.DelaySeconds, def.TimeoutSeconds, def.Priority,
		def.Message, def.MessageFa, def.OnText, def.OffText, def.OnTextFa, def.OffTextFa,
		def.IsDisabled, def.IsDeleted, def.CreatedAt, def.UpdatedAt)
	return err
}

// Update replaces a definition's mutable fields.
func (r *DefinitionRepository) Update(ctx context.Context, def *alarms.Definition) error {
	if r == nil || r.db == nil {
		return errors.New("alarm definition repo: nil db")
	}
	if def == nil {
		return errors.New("alarm definition repo: nil definition")
	}
	if def.UpdatedAt.IsZero() {
		def.UpdatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE alarm_definitions SET
	item_id = $2, item_name = $3, item_name_fa = $4, alarm_type = $5, compare_type = $6,
	value1 = $7, value2 = $8, delay_seconds = $9, timeout_seconds = $10, priority = $11,
	message = $12, message_fa = $13, on_text = $14, off_text = $15, on_text_fa = $16, off_text_fa = $17,
	is_disabled = $18, updated_at = $19
WHERE id = $1 AND is_deleted = FALSE`,
		def.ID, def.ItemID, def.ItemName, def.ItemNameFa, string(def.Type), string(def.Compare),
		def.Value1, def.Value2, def.DelaySeconds, def.TimeoutSeconds, def.Priority,
		def.Message, def.MessageFa, def.OnText, def.OffText, def.OnTextFa, def.OffTextFa,
		def.IsDisabled, def.UpdatedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alarms.ErrNotFound
	}
	return nil
}

// SoftDelete disables and marks a definition deleted; rows are retained.
func (r *DefinitionRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("alarm definition repo: nil db")
	}
	if id == "" {
		return errors.New("alarm definition repo: empty id")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE alarm_definitions SET
	is_disabled = TRUE, is_deleted = TRUE, updated_at = $2
WHERE id = $1 AND is_deleted = FALSE`, id, at.UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alarms.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (alarms.Definition, error) {
	var def alarms.Definition
	var alarmType, compareType string
	if err := row.Scan(
		&def.ID,
		&def.ItemID,
		&def.ItemName,
		&def.ItemNameFa,
		&alarmType,
		&compareType,
		&def.Value1,
		&def.Value2,
		&def.DelaySeconds,
		&def.TimeoutSeconds,
		&def.Priority,
		&def.Message,
		&def.MessageFa,
		&def.OnText,
		&def.OffText,
		&def.OnTextFa,
		&def.OffTextFa,
		&def.IsDisabled,
		&def.IsDeleted,
		&def.CreatedAt,
		&def.UpdatedAt,
	); err != nil {
		return alarms.Definition{}, err
	}
	def.Type = alarms.Type(alarmType)
	def.Compare = alarms.CompareType(compareType)
	def.CreatedAt = def.CreatedAt.UTC()
	def.UpdatedAt = def.UpdatedAt.UTC()
	return def, nil
}
