// Package authz builds the role based casbin enforcer used by protected routes.
package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/samber/lo"
)

// ErrInvalidPolicy is returned for a policy line that is neither "p,sub,obj,act"
// nor "g,member,role".
var ErrInvalidPolicy = errors.New("invalid policy line")

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// NewEnforcer returns an in-memory enforcer loaded with the given policy lines.
func NewEnforcer(policies []string) (*casbin.Enforcer, error) {
	rules, err := ParsePolicies(policies)
	if err != nil {
		return nil, err
	}

	e, err := newEnforcer()
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if rule[0] == "g" {
			_, err = e.AddGroupingPolicy(lo.ToAnySlice(rule[1:])...)
		} else {
			_, err = e.AddPolicy(lo.ToAnySlice(rule[1:])...)
		}
		if err != nil {
			return nil, fmt.Errorf("add policy %v: %w", rule, err)
		}
	}

	return e, nil
}

// NewStoredEnforcer stores the seed lines through a, then returns an enforcer
// loaded from everything a holds. Changes made on the enforcer are saved back.
func NewStoredEnforcer(ctx context.Context, a *Adapter, seed []string) (*casbin.Enforcer, error) {
	rules, err := ParsePolicies(seed)
	if err != nil {
		return nil, err
	}
	if err := a.AddRules(ctx, rules); err != nil {
		return nil, err
	}

	return newEnforcer(a)
}

// ParsePolicies turns policy lines into rules of the form [ptype, v0, ...].
func ParsePolicies(lines []string) ([][]string, error) {
	rules := make([][]string, 0, len(lines))
	for _, line := range lines {
		fields := lo.Map(strings.Split(line, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
		if lo.Contains(fields, "") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, line)
		}

		switch {
		case fields[0] == "p" && len(fields) == 4, fields[0] == "g" && len(fields) == 3:
			rules = append(rules, fields)
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, line)
		}
	}

	return rules, nil
}

func newEnforcer(params ...any) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(append([]any{m}, params...)...)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}

	return e, nil
}
