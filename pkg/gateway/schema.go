package gateway

import (
	"math"
	"sort"
	"strings"
)

// ValidateArguments checks an argument mapping against a tool's declared
// parameters and returns a normalized copy. The check order is fixed:
// required-field presence first (all missing fields reported together),
// then per-field type checks in declared parameter order. In strict mode,
// fields that are not part of the schema are rejected after the type
// checks; by default they pass through untouched.
//
// The only coercion applied is trimming leading and trailing whitespace
// from string values.
func ValidateArguments(d *ToolDescriptor, args map[string]interface{}, strict bool) (map[string]interface{}, error) {
	if args == nil {
		args = map[string]interface{}{}
	}

	var missing []string
	for _, param := range d.Parameters {
		if !param.Required {
			continue
		}
		if _, present := args[param.Name]; !present {
			missing = append(missing, param.Name)
		}
	}
	if len(missing) > 0 {
		return nil, NewError(FailureValidation,
			"missing required fields: %s", strings.Join(missing, ", "))
	}

	normalized := make(map[string]interface{}, len(args))
	for k, v := range args {
		normalized[k] = v
	}

	for _, param := range d.Parameters {
		value, present := args[param.Name]
		if !present {
			continue
		}
		coerced, err := checkValue(param, value)
		if err != nil {
			return nil, err
		}
		normalized[param.Name] = coerced
	}

	if strict {
		declared := make(map[string]bool, len(d.Parameters))
		for _, param := range d.Parameters {
			declared[param.Name] = true
		}
		var unknown []string
		for k := range args {
			if !declared[k] {
				unknown = append(unknown, k)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, NewError(FailureValidation,
				"unknown fields: %s", strings.Join(unknown, ", "))
		}
	}

	return normalized, nil
}

// checkValue validates a single argument value against its declared
// parameter and applies string trimming.
func checkValue(param Parameter, value interface{}) (interface{}, error) {
	switch param.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, typeError(param.Name, "string", value)
		}
		s = strings.TrimSpace(s)
		if len(param.Enum) > 0 && !containsString(param.Enum, s) {
			return nil, NewError(FailureValidation,
				"field %q must be one of [%s], got %q",
				param.Name, strings.Join(param.Enum, ", "), s)
		}
		return s, nil

	case "number":
		n, ok := value.(float64)
		if !ok {
			return nil, typeError(param.Name, "number", value)
		}
		return n, nil

	case "integer":
		n, ok := value.(float64)
		if !ok || math.Trunc(n) != n {
			return nil, typeError(param.Name, "integer", value)
		}
		return n, nil

	case "boolean":
		b, ok := value.(bool)
		if !ok {
			return nil, typeError(param.Name, "boolean", value)
		}
		return b, nil

	case "array":
		items, ok := value.([]interface{})
		if !ok {
			return nil, typeError(param.Name, "array", value)
		}
		if param.Items == "" {
			return items, nil
		}
		elem := Parameter{Name: param.Name, Type: param.Items}
		out := make([]interface{}, len(items))
		for i, item := range items {
			coerced, err := checkValue(elem, item)
			if err != nil {
				return nil, NewError(FailureValidation,
					"field %q: element %d is not of type %s", param.Name, i, param.Items)
			}
			out[i] = coerced
		}
		return out, nil

	case "object":
		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, typeError(param.Name, "object", value)
		}
		return obj, nil

	default:
		return nil, NewError(FailureInternal, "unsupported parameter type %q", param.Type)
	}
}

func typeError(name, expected string, got interface{}) *Error {
	return NewError(FailureValidation,
		"field %q must be of type %s, got %s", name, expected, jsonTypeName(got))
}

// jsonTypeName names a decoded JSON value the way a caller would see it.
func jsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return "unknown"
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
