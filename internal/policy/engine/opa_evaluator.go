package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const policyQuery = "data.accounts.authz.allow"

// Default Rego policy: allow iff every required permission is granted.
const defaultRegoPolicy = `package accounts.authz

default allow := false

allow if {
	every p in input.required {
		p in input.granted
	}
}
`

// OPAEvaluator evaluates permission checks with an in-process OPA Rego policy
// compiled once at construction.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles policy (the default policy when empty) and prepares
// the allow query.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = defaultRegoPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"authz.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy query: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// Allow reports whether granted covers required. An empty required set is
// always allowed.
func (e *OPAEvaluator) Allow(ctx context.Context, granted, required []string) (bool, error) {
	if granted == nil {
		granted = []string{}
	}
	if required == nil {
		required = []string{}
	}
	input := map[string]interface{}{
		"granted":  granted,
		"required": required,
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("eval policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck evaluates a known-allowed and a known-denied input. Returns nil
// when both produce the expected decision.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	ok, err := e.Allow(ctx, []string{"probe"}, []string{"probe"})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("policy self-check: expected allow")
	}
	ok, err = e.Allow(ctx, nil, []string{"probe"})
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("policy self-check: expected deny")
	}
	return nil
}
