package authz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

// ruleFields is the widest rule the model defines (p = sub, obj, act).
const ruleFields = 3

const (
	selectRules = `SELECT ptype, v0, v1, v2 FROM authz_rules ORDER BY id`
	insertRule  = `INSERT INTO authz_rules (ptype, v0, v1, v2) VALUES ($1, $2, $3, $4)
		ON CONFLICT (ptype, v0, v1, v2) DO NOTHING`
	deleteRule  = `DELETE FROM authz_rules WHERE ptype = $1 AND v0 = $2 AND v1 = $3 AND v2 = $4`
	deleteRules = `DELETE FROM authz_rules`
)

var (
	// ErrRuleTooLong is returned for a rule with more fields than the model.
	ErrRuleTooLong = errors.New("rule length exceeds field count")
	// ErrEmptyPtype is returned by a filtered delete without a policy type.
	ErrEmptyPtype = errors.New("ptype is empty")
)

// Commander is the slice of pgx the adapter needs; *pgxpool.Pool satisfies it.
type Commander interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Adapter keeps casbin rules in the authz_rules table. Rules the enforcer adds
// or removes at runtime are written through, and every node loads the table
// on start.
type Adapter struct {
	db Commander
}

var _ persist.Adapter = (*Adapter)(nil)

func NewAdapter(db Commander) *Adapter {
	return &Adapter{db: db}
}

// AddRules inserts rules given as [ptype, v0, ...] and skips the ones already stored.
func (a *Adapter) AddRules(ctx context.Context, rules [][]string) error {
	if len(rules) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rule := range rules {
		args, err := ruleArgs(rule[0], rule[1:])
		if err != nil {
			return err
		}
		batch.Queue(insertRule, args...)
	}

	if err := a.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert authz rules: %w", err)
	}
	return nil
}

func (a *Adapter) LoadPolicyCtx(ctx context.Context, m model.Model) error {
	rows, err := a.db.Query(ctx, selectRules)
	if err != nil {
		return fmt.Errorf("select authz rules: %w", err)
	}

	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]string, error) {
		line := make([]string, 1+ruleFields)
		if err := row.Scan(&line[0], &line[1], &line[2], &line[3]); err != nil {
			return nil, err
		}
		return trimTrailingEmpty(line), nil
	})
	if err != nil {
		return fmt.Errorf("scan authz rules: %w", err)
	}

	for _, line := range lines {
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return err
		}
	}
	return nil
}

// SavePolicyCtx replaces the stored rules with the ones held by the model.
func (a *Adapter) SavePolicyCtx(ctx context.Context, m model.Model) error {
	var rules [][]string
	for _, sec := range []string{"p", "g"} {
		for ptype, ast := range m[sec] {
			for _, rule := range ast.Policy {
				rules = append(rules, append([]string{ptype}, rule...))
			}
		}
	}

	return pgx.BeginFunc(ctx, a.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteRules); err != nil {
			return fmt.Errorf("clear authz rules: %w", err)
		}
		return NewAdapter(tx).AddRules(ctx, rules)
	})
}

func (a *Adapter) AddPolicyCtx(ctx context.Context, _ string, ptype string, rule []string) error {
	args, err := ruleArgs(ptype, rule)
	if err != nil {
		return err
	}
	if _, err := a.db.Exec(ctx, insertRule, args...); err != nil {
		return fmt.Errorf("insert authz rule: %w", err)
	}
	return nil
}

func (a *Adapter) RemovePolicyCtx(ctx context.Context, _ string, ptype string, rule []string) error {
	args, err := ruleArgs(ptype, rule)
	if err != nil {
		return err
	}
	if _, err := a.db.Exec(ctx, deleteRule, args...); err != nil {
		return fmt.Errorf("delete authz rule: %w", err)
	}
	return nil
}

// RemoveFilteredPolicyCtx deletes rules of ptype whose fields, starting at
// fieldIndex, equal fieldValues. Empty values match anything.
func (a *Adapter) RemoveFilteredPolicyCtx(ctx context.Context, _ string, ptype string, fieldIndex int, fieldValues ...string) error {
	query, args, err := filteredDelete(ptype, fieldIndex, fieldValues)
	if err != nil {
		return err
	}
	if _, err := a.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete authz rules: %w", err)
	}
	return nil
}

func (a *Adapter) LoadPolicy(m model.Model) error {
	return a.LoadPolicyCtx(context.Background(), m)
}

func (a *Adapter) SavePolicy(m model.Model) error {
	return a.SavePolicyCtx(context.Background(), m)
}

func (a *Adapter) AddPolicy(sec string, ptype string, rule []string) error {
	return a.AddPolicyCtx(context.Background(), sec, ptype, rule)
}

func (a *Adapter) RemovePolicy(sec string, ptype string, rule []string) error {
	return a.RemovePolicyCtx(context.Background(), sec, ptype, rule)
}

func (a *Adapter) RemoveFilteredPolicy(sec string, ptype string, fieldIndex int, fieldValues ...string) error {
	return a.RemoveFilteredPolicyCtx(context.Background(), sec, ptype, fieldIndex, fieldValues...)
}

func filteredDelete(ptype string, fieldIndex int, fieldValues []string) (string, []any, error) {
	if ptype == "" {
		return "", nil, ErrEmptyPtype
	}
	if fieldIndex < 0 || fieldIndex+len(fieldValues) > ruleFields {
		return "", nil, fmt.Errorf("%w: %d > %d", ErrRuleTooLong, fieldIndex+len(fieldValues), ruleFields)
	}

	conditions := []string{"ptype = $1"}
	args := []any{ptype}
	for i, v := range fieldValues {
		if v == "" {
			continue
		}
		args = append(args, v)
		conditions = append(conditions, "v"+strconv.Itoa(fieldIndex+i)+" = $"+strconv.Itoa(len(args)))
	}

	return deleteRules + " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// ruleArgs pads rule to the stored width and prepends ptype.
func ruleArgs(ptype string, rule []string) ([]any, error) {
	if len(rule) > ruleFields {
		return nil, fmt.Errorf("%w: %d > %d", ErrRuleTooLong, len(rule), ruleFields)
	}
	padded := make([]string, ruleFields)
	copy(padded, rule)

	return lo.ToAnySlice(append([]string{ptype}, padded...)), nil
}

func trimTrailingEmpty(line []string) []string {
	last := len(line) - 1
	for last >= 0 && line[last] == "" {
		last--
	}
	return line[:last+1]
}
