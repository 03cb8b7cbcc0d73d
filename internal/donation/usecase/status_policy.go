package usecase

import (
	"fmt"
	"strings"

	"vitamend-data/internal/donation/domain/model"
	apperrors "vitamend-data/internal/shared/errors"

	"github.com/google/cel-go/cel"
)

const statusPolicyVariable = "DONATION_STATUS_POLICY"

// StatusPolicy decides whether a donation may move between two statuses. The
// expression sees the current status as from and the requested one as to.
// A nil policy allows every transition.
type StatusPolicy struct {
	expression string
	program    cel.Program
}

// NewStatusPolicy compiles expression. An empty expression yields a nil policy.
func NewStatusPolicy(expression string) (*StatusPolicy, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("from", cel.StringType),
		cel.Variable("to", cel.StringType),
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create CEL environment").WithCause(err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, apperrors.NewConfigurationError(statusPolicyVariable,
			fmt.Sprintf("%s: CEL compilation error: %v", statusPolicyVariable, issues.Err()))
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperrors.NewConfigurationError(statusPolicyVariable, statusPolicyVariable+" must evaluate to a bool")
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, apperrors.NewConfigurationError(statusPolicyVariable,
			fmt.Sprintf("%s: failed to create CEL program: %v", statusPolicyVariable, err))
	}

	return &StatusPolicy{expression: expression, program: program}, nil
}

// Allows evaluates the policy for a transition.
func (p *StatusPolicy) Allows(from, to model.DonationStatus) (bool, error) {
	if p == nil {
		return true, nil
	}

	out, _, err := p.program.Eval(map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean value")
	}
	return allowed, nil
}

// String returns the source expression.
func (p *StatusPolicy) String() string {
	if p == nil {
		return ""
	}
	return p.expression
}
