package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/oliveagle/jsonpath"
	"github.com/crmkit/automation/model"
)

const OP_EQ string = "eq"
const OP_NEQ string = "neq"
const OP_GT string = "gt"
const OP_GTE string = "gte"
const OP_LT string = "lt"
const OP_LTE string = "lte"
const OP_CONTAINS string = "contains"
const OP_EXISTS string = "exists"

// Evaluate decides whether the trigger payload satisfies the workflow
// conditions. A nil or empty condition always passes. When both rules and a
// script are present, both must hold.
func Evaluate(c *model.Condition, data map[string]any) (bool, error) {
	if c == nil {
		return true, nil
	}
	if len(c.Rules) == 0 && len(c.Script) == 0 {
		return true, nil
	}
	if len(c.Rules) > 0 {
		ok, err := evalRules(c, data)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	if len(c.Script) > 0 {
		return evalScript(c.Script, data)
	}
	return true, nil
}

func evalRules(c *model.Condition, data map[string]any) (bool, error) {
	any := strings.EqualFold(c.Match, model.MATCH_ANY)
	for _, rule := range c.Rules {
		ok, err := evalRule(rule, data)
		if err != nil {
			return false, err
		}
		if any && ok {
			return true, nil
		}
		if !any && !ok {
			return false, nil
		}
	}
	return !any, nil
}

func evalRule(rule model.ConditionRule, data map[string]any) (bool, error) {
	value, err := jsonpath.JsonPathLookup(data, rule.Path)
	if rule.Op == OP_EXISTS {
		return err == nil, nil
	}
	if err != nil {
		return false, nil
	}
	switch rule.Op {
	case OP_EQ:
		return equal(value, rule.Value), nil
	case OP_NEQ:
		return !equal(value, rule.Value), nil
	case OP_GT, OP_GTE, OP_LT, OP_LTE:
		return compareNumeric(rule.Op, value, rule.Value)
	case OP_CONTAINS:
		return contains(value, rule.Value), nil
	default:
		return false, fmt.Errorf("unknown condition operator %s", rule.Op)
	}
}

func equal(a any, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func compareNumeric(op string, a any, b any) (bool, error) {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if !okA || !okB {
		return false, fmt.Errorf("operator %s requires numeric operands", op)
	}
	switch op {
	case OP_GT:
		return fa > fb, nil
	case OP_GTE:
		return fa >= fb, nil
	case OP_LT:
		return fa < fb, nil
	default:
		return fa <= fb, nil
	}
}

func contains(value any, needle any) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(v, fmt.Sprintf("%v", needle))
	case []any:
		for _, item := range v {
			if equal(item, needle) {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func evalScript(script string, data map[string]any) (bool, error) {
	vm := goja.New()
	if err := vm.Set("event", data); err != nil {
		return false, err
	}
	value, err := vm.RunString(script)
	if err != nil {
		return false, fmt.Errorf("error evaluating condition script %w", err)
	}
	return value.ToBoolean(), nil
}
