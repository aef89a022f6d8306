package finalizers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dfchat/internal/constants"
	apperrors "dfchat/pkg/errors"
	"dfchat/pkg/metrics"
)

const ruleColumns = `id, name, expression, priority, enabled, created_at, updated_at`

// PostgresRepository stores hide rules in the hide_rules table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetActiveRules(ctx context.Context) ([]HideRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM hide_rules
		WHERE enabled = true
		ORDER BY priority DESC, created_at ASC
	`
	return r.query(ctx, "get_active_rules", query)
}

func (r *PostgresRepository) List(ctx context.Context) ([]HideRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM hide_rules
		ORDER BY priority DESC, created_at ASC
	`
	return r.query(ctx, "list_rules", query)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (HideRule, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM hide_rules WHERE id = $1`, id)

	rule, err := scanRule(row)
	r.observe("get_rule", start, err)
	if errors.Is(err, sql.ErrNoRows) {
		return HideRule{}, apperrors.ErrNotFound.WithMessage(fmt.Sprintf("hide rule %q not found", id))
	}
	if err != nil {
		return HideRule{}, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// Upsert inserts rule, or replaces the stored rule with the same ID. An
// empty ID gets a fresh UUID.
func (r *PostgresRepository) Upsert(ctx context.Context, rule HideRule) (HideRule, error) {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	query := `
		INSERT INTO hide_rules (id, name, expression, priority, enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			expression = EXCLUDED.expression,
			priority = EXCLUDED.priority,
			enabled = EXCLUDED.enabled,
			updated_at = NOW()
		RETURNING ` + ruleColumns

	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, rule.ID, rule.Name, rule.Expression, rule.Priority, rule.Enabled)
	stored, err := scanRule(row)
	r.observe("upsert_rule", start, err)
	if err != nil {
		return HideRule{}, fmt.Errorf("failed to upsert rule: %w", err)
	}
	return stored, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	res, err := r.db.ExecContext(ctx, `DELETE FROM hide_rules WHERE id = $1`, id)
	r.observe("delete_rule", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n == 0 {
		return apperrors.ErrNotFound.WithMessage(fmt.Sprintf("hide rule %q not found", id))
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, operation, query string) ([]HideRule, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.observe(operation, start, err)
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	rules := make([]HideRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			r.observe(operation, start, err)
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	err = rows.Err()
	r.observe(operation, start, err)
	if err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return rules, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(s scanner) (HideRule, error) {
	var rule HideRule
	err := s.Scan(
		&rule.ID,
		&rule.Name,
		&rule.Expression,
		&rule.Priority,
		&rule.Enabled,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	return rule, err
}

func (r *PostgresRepository) observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		status = "error"
	}
	metrics.IncDatabaseQuery(constants.ServiceName, "postgres", operation, status)
	metrics.ObserveDatabaseQueryDuration(constants.ServiceName, "postgres", operation, time.Since(start))
}
