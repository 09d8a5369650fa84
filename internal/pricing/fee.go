package pricing

import (
	"fmt"
	"sort"
	"sync"

	"bakery-fulfillment/internal/domain"
	"github.com/google/cel-go/cel"
)

// FeeInput describes the order a delivery fee is quoted for.
type FeeInput struct {
	ZIP           string
	SubtotalCents int64
}

// FeeQuote is the computed delivery fee. Zone is nil when the ZIP matched no
// zone; the fee is then 0 and the caller decides whether to refuse delivery.
type FeeQuote struct {
	FeeAmountCents int64                `json:"feeAmountCents"`
	Zone           *domain.DeliveryZone `json:"zone,omitempty"`
	AppliedRule    *domain.FeeRule      `json:"appliedRule,omitempty"`
}

type compiledRule struct {
	rule    domain.FeeRule
	program cel.Program
}

// FeeCalculator composes zone fees with override rules.
type FeeCalculator struct {
	zones []domain.DeliveryZone
	rules []compiledRule
}

var (
	ruleEnvOnce sync.Once
	ruleEnv     *cel.Env
	ruleEnvErr  error

	// programs caches compiled rules by expression; cel.Program is safe for
	// concurrent use.
	programs sync.Map
)

func newRuleEnv() (*cel.Env, error) {
	ruleEnvOnce.Do(func() {
		ruleEnv, ruleEnvErr = cel.NewEnv(
			cel.Variable("zip", cel.StringType),
			cel.Variable("zone", cel.StringType),
			cel.Variable("zone_fee_cents", cel.IntType),
			cel.Variable("subtotal_cents", cel.IntType),
		)
	})
	return ruleEnv, ruleEnvErr
}

func compileRule(env *cel.Env, expr string) (cel.Program, error) {
	if prg, ok := programs.Load(expr); ok {
		return prg.(cel.Program), nil
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	programs.Store(expr, prg)
	return prg, nil
}

// NewFeeCalculator compiles the active rules. A rule that does not compile
// or has a negative fee is rejected here rather than at quote time.
func NewFeeCalculator(zones []domain.DeliveryZone, rules []domain.FeeRule) (*FeeCalculator, error) {
	env, err := newRuleEnv()
	if err != nil {
		return nil, fmt.Errorf("fee rules: build env: %w", err)
	}

	calc := &FeeCalculator{zones: zones}
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if r.FeeCents < 0 {
			return nil, fmt.Errorf("%w: fee rule %s: feeCents %d is negative", domain.ErrInvalidInput, r.Name, r.FeeCents)
		}
		prg, err := compileRule(env, r.Expression)
		if err != nil {
			return nil, fmt.Errorf("%w: fee rule %s: %v", domain.ErrInvalidInput, r.Name, err)
		}
		calc.rules = append(calc.rules, compiledRule{rule: r, program: prg})
	}
	sort.SliceStable(calc.rules, func(i, j int) bool {
		return calc.rules[i].rule.Priority > calc.rules[j].rule.Priority
	})
	return calc, nil
}

// CalculateDeliveryFee quotes the zone fee for zip with no order context.
func (c *FeeCalculator) CalculateDeliveryFee(zip string) (FeeQuote, error) {
	return c.Calculate(FeeInput{ZIP: zip})
}

// Calculate resolves the zone and applies the first matching override rule.
func (c *FeeCalculator) Calculate(in FeeInput) (FeeQuote, error) {
	zone, ok := ResolveZone(c.zones, in.ZIP)
	if !ok {
		return FeeQuote{}, nil
	}
	quote := FeeQuote{FeeAmountCents: zone.FeeAmountCents, Zone: &zone}

	vars := map[string]any{
		"zip":            NormalizeZIP(in.ZIP),
		"zone":           zone.Name,
		"zone_fee_cents": zone.FeeAmountCents,
		"subtotal_cents": in.SubtotalCents,
	}
	for _, cr := range c.rules {
		out, _, err := cr.program.Eval(vars)
		if err != nil {
			return FeeQuote{}, fmt.Errorf("fee rule %s: eval: %w", cr.rule.Name, err)
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return FeeQuote{}, fmt.Errorf("%w: fee rule %s: expression returned %T, want bool", domain.ErrInvalidInput, cr.rule.Name, out.Value())
		}
		if matched {
			rule := cr.rule
			quote.FeeAmountCents = rule.FeeCents
			quote.AppliedRule = &rule
			break
		}
	}
	return quote, nil
}
