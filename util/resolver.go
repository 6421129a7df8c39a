package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile("{(.*?)}")

// ResolveParams substitutes `{$.path}` tokens in string values of params with
// the corresponding values from the trigger payload. Non-string values and
// tokens that do not resolve are passed through untouched.
func ResolveParams(params map[string]any, data map[string]any) map[string]any {
	output := make(map[string]any)
	resolveMap(data, params, output)
	return output
}

func resolveMap(data map[string]any, params map[string]any, output map[string]any) {
	for k, v := range params {
		switch val := v.(type) {
		case map[string]any:
			out := make(map[string]any)
			resolveMap(data, val, out)
			output[k] = out
		case []any:
			output[k] = resolveList(data, val)
		case string:
			output[k] = resolveString(data, val)
		default:
			output[k] = v
		}
	}
}

func resolveList(data map[string]any, list []any) []any {
	output := make([]any, 0, len(list))
	for _, v := range list {
		switch val := v.(type) {
		case map[string]any:
			out := make(map[string]any)
			resolveMap(data, val, out)
			output = append(output, out)
		case []any:
			output = append(output, resolveList(data, val))
		case string:
			output = append(output, resolveString(data, val))
		default:
			output = append(output, v)
		}
	}
	return output
}

func resolveString(data map[string]any, s string) string {
	tokens := tokenPattern.FindAllString(s, -1)
	for _, token := range tokens {
		path := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
		if !strings.HasPrefix(path, "$") {
			continue
		}
		value, err := jsonpath.JsonPathLookup(data, path)
		if err != nil {
			continue
		}
		s = strings.ReplaceAll(s, token, fmt.Sprintf("%v", value))
	}
	return s
}
