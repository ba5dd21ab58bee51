package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
)

var procNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Procedures is the storage boundary: stored functions called by name with
// positional parameters, answering with raw rows.
type Procedures interface {
	Call(ctx context.Context, name string, args ...any) ([]rowmap.Row, error)
}

type PgProcedures struct {
	pool *pgxpool.Pool
}

func NewPgProcedures(pool *pgxpool.Pool) *PgProcedures {
	return &PgProcedures{pool: pool}
}

func (p *PgProcedures) Call(ctx context.Context, name string, args ...any) ([]rowmap.Row, error) {
	sql, err := callSQL(name, len(args))
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, Translate(err))
	}

	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, Translate(err))
	}

	return out, nil
}

func callSQL(name string, n int) (string, error) {
	if !procNameRe.MatchString(name) {
		return "", fmt.Errorf("invalid procedure name %q", name)
	}
	params := make([]string, n)
	for i := range params {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("SELECT * FROM %s(%s)", name, strings.Join(params, ", ")), nil
}

// MutationResult is the (success, message, id | rows_affected) tuple returned
// by the write procedures.
type MutationResult struct {
	Success      bool
	Message      string
	ID           string
	RowsAffected int64
}

var mutationAliases = rowmap.Aliases{
	"Success":      rowmap.Variants("Success", "result"),
	"Message":      rowmap.Variants("Message"),
	"ID":           rowmap.Variants("Id", "reminder_id", "ReminderId", "appointment_id", "appointmentId", "new_id"),
	"RowsAffected": rowmap.Variants("RowsAffected", "affected_rows"),
}

// Mutate calls a write procedure and decodes its first row. A procedure that
// answers with no row is treated as having affected nothing.
func Mutate(ctx context.Context, p Procedures, name string, args ...any) (MutationResult, error) {
	rows, err := p.Call(ctx, name, args...)
	if err != nil {
		return MutationResult{}, err
	}
	if len(rows) == 0 {
		return MutationResult{}, nil
	}

	r := rowmap.NewReader(rows[0], mutationAliases)
	res := MutationResult{
		Success:      r.Bool("Success", false),
		Message:      r.String("Message"),
		ID:           r.String("ID"),
		RowsAffected: r.Int("RowsAffected"),
	}
	if !r.Has("RowsAffected") && res.Success {
		res.RowsAffected = 1
	}
	return res, nil
}
