package audit

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

const adjustmentColumns = `id, operator_id, user_id, game_id, location, delta, requested, confirmed, outcome, error, took_ms, created_at`

// Repository handles token_adjustments database operations
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the table and its indexes when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Create inserts one adjustment
func (r *Repository) Create(ctx context.Context, a *Adjustment) error {
	query := `
		INSERT INTO token_adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.OperatorID,
		a.UserID,
		a.GameID,
		a.Location,
		a.Delta,
		a.Requested,
		a.Confirmed,
		a.Outcome,
		a.Error,
		a.TookMS,
		a.CreatedAt,
	)
	return err
}

// List returns one page of adjustments, newest first, and the total count
// matching the filter.
func (r *Repository) List(ctx context.Context, filter Filter, limit, offset int) ([]Adjustment, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	eq := func(column, value string) {
		if value == "" {
			return
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}
	eq("operator_id", filter.OperatorID)
	eq("user_id", filter.UserID)
	eq("game_id", filter.GameID)
	eq("location", filter.Location)
	eq("outcome", filter.Outcome)

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM token_adjustments " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM token_adjustments %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		adjustmentColumns, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	adjustments := []Adjustment{}
	if err := r.db.SelectContext(ctx, &adjustments, query, args...); err != nil {
		return nil, 0, err
	}
	return adjustments, total, nil
}
