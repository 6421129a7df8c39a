package condition

import (
	"testing"

	"github.com/crmkit/automation/model"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	data := map[string]any{
		"contact": map[string]any{
			"email": "jo@acme.com",
			"stage": "LEAD",
			"score": 42.0,
			"tags":  []any{"vip", "newsletter"},
		},
	}
	for scenario, fn := range map[string]func(t *testing.T, data map[string]any){
		"nil condition passes":       testNilCondition,
		"empty condition passes":     testEmptyCondition,
		"all rules must match":       testMatchAll,
		"any rule may match":         testMatchAny,
		"numeric comparison":         testNumeric,
		"contains on list and text":  testContains,
		"exists operator":            testExists,
		"unknown operator errors":    testUnknownOp,
		"script expression":          testScript,
		"script error is propagated": testScriptError,
	} {
		t.Run(scenario, func(t *testing.T) {
			fn(t, data)
		})
	}
}

func testNilCondition(t *testing.T, data map[string]any) {
	ok, err := Evaluate(nil, data)
	require.NoError(t, err)
	require.True(t, ok)
}

func testEmptyCondition(t *testing.T, data map[string]any) {
	ok, err := Evaluate(&model.Condition{}, data)
	require.NoError(t, err)
	require.True(t, ok)
}

func testMatchAll(t *testing.T, data map[string]any) {
	cond := &model.Condition{
		Match: model.MATCH_ALL,
		Rules: []model.ConditionRule{
			{Path: "$.contact.stage", Op: OP_EQ, Value: "LEAD"},
			{Path: "$.contact.email", Op: OP_NEQ, Value: ""},
		},
	}
	ok, err := Evaluate(cond, data)
	require.NoError(t, err)
	require.True(t, ok)

	cond.Rules = append(cond.Rules, model.ConditionRule{Path: "$.contact.stage", Op: OP_EQ, Value: "CUSTOMER"})
	ok, err = Evaluate(cond, data)
	require.NoError(t, err)
	require.False(t, ok)
}

func testMatchAny(t *testing.T, data map[string]any) {
	cond := &model.Condition{
		Match: model.MATCH_ANY,
		Rules: []model.ConditionRule{
			{Path: "$.contact.stage", Op: OP_EQ, Value: "CUSTOMER"},
			{Path: "$.contact.score", Op: OP_GT, Value: 40},
		},
	}
	ok, err := Evaluate(cond, data)
	require.NoError(t, err)
	require.True(t, ok)
}

func testNumeric(t *testing.T, data map[string]any) {
	cond := &model.Condition{
		Rules: []model.ConditionRule{
			{Path: "$.contact.score", Op: OP_GTE, Value: 42},
			{Path: "$.contact.score", Op: OP_LT, Value: 100},
		},
	}
	ok, err := Evaluate(cond, data)
	require.NoError(t, err)
	require.True(t, ok)

	cond = &model.Condition{
		Rules: []model.ConditionRule{
			{Path: "$.contact.email", Op: OP_GT, Value: 5},
		},
	}
	_, err = Evaluate(cond, data)
	require.Error(t, err)
}

func testContains(t *testing.T, data map[string]any) {
	cond := &model.Condition{
		Rules: []model.ConditionRule{
			{Path: "$.contact.tags", Op: OP_CONTAINS, Value: "vip"},
			{Path: "$.contact.email", Op: OP_CONTAINS, Value: "@acme"},
		},
	}
	ok, err := Evaluate(cond, data)
	require.NoError(t, err)
	require.True(t, ok)
}

func testExists(t *testing.T, data map[string]any) {
	cond := &model.Condition{
		Rules: []model.ConditionRule{
			{Path: "$.contact.email", Op: OP_EXISTS},
		},
	}
	ok, err := Evaluate(cond, data)
	require.NoError(t, err)
	require.True(t, ok)

	cond.Rules = []model.ConditionRule{{Path: "$.contact.phone", Op: OP_EXISTS}}
	ok, err = Evaluate(cond, data)
	require.NoError(t, err)
	require.False(t, ok)
}

func testUnknownOp(t *testing.T, data map[string]any) {
	cond := &model.Condition{
		Rules: []model.ConditionRule{
			{Path: "$.contact.email", Op: "like", Value: "acme"},
		},
	}
	_, err := Evaluate(cond, data)
	require.Error(t, err)
}

func testScript(t *testing.T, data map[string]any) {
	cond := &model.Condition{Script: "event.contact.score > 40 && event.contact.stage === 'LEAD'"}
	ok, err := Evaluate(cond, data)
	require.NoError(t, err)
	require.True(t, ok)

	cond.Script = "event.contact.score > 100"
	ok, err = Evaluate(cond, data)
	require.NoError(t, err)
	require.False(t, ok)
}

func testScriptError(t *testing.T, data map[string]any) {
	cond := &model.Condition{Script: "this is not javascript ("}
	_, err := Evaluate(cond, data)
	require.Error(t, err)
}
