package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Validate проверяет payload по схеме и возвращает полный список нарушений
// вместе с данными, содержащими только объявленные поля после санитизации.
// В строгом режиме любое необъявленное поле отклоняет запрос целиком —
// это осознанная политика allow-list против внедрённых полей.
func Validate(payload map[string]any, schema Schema, strict bool) Result {
	return validate(payload, schema, strict, "")
}

func validate(payload map[string]any, schema Schema, strict bool, prefix string) Result {
	res := Result{Data: make(map[string]any)}

	if strict {
		for key := range payload {
			if _, ok := schema[key]; !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("unexpected field: %s", qualify(prefix, key)))
			}
		}
	}

	// Детерминированный порядок обхода, чтобы список ошибок был стабильным.
	fields := make([]string, 0, len(schema))
	for name := range schema {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	for _, name := range fields {
		rule := schema[name]
		qualified := qualify(prefix, name)

		value, present := payload[name]
		if !present || value == nil || isEmpty(value) {
			if rule.Required {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s is required", qualified))
			}
			continue
		}

		switch rule.Type {
		case TypeString:
			str, ok := value.(string)
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s must be a string", qualified))
				continue
			}
			errs := checkString(str, rule, qualified)
			if len(errs) > 0 {
				res.Errors = append(res.Errors, errs...)
				continue
			}
			if rule.Check != nil && !rule.Check(str) {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s is not valid", qualified))
				continue
			}
			res.Data[name] = sanitizeString(str, rule)
		case TypeNumber:
			num, ok := asNumber(value)
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s must be a number", qualified))
				continue
			}
			if rule.Check != nil && !rule.Check(num) {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s is not valid", qualified))
				continue
			}
			res.Data[name] = num
		case TypeBoolean:
			b, ok := value.(bool)
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s must be a boolean", qualified))
				continue
			}
			if rule.Check != nil && !rule.Check(b) {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s is not valid", qualified))
				continue
			}
			res.Data[name] = b
		case TypeObject:
			obj, ok := value.(map[string]any)
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s must be an object", qualified))
				continue
			}
			if rule.Nested != nil {
				nested := validate(obj, rule.Nested, strict, qualified)
				res.Errors = append(res.Errors, nested.Errors...)
				if len(nested.Errors) == 0 {
					res.Data[name] = nested.Data
				}
				continue
			}
			if rule.Check != nil && !rule.Check(obj) {
				res.Errors = append(res.Errors, fmt.Sprintf("field %s is not valid", qualified))
				continue
			}
			res.Data[name] = obj
		default:
			res.Errors = append(res.Errors, fmt.Sprintf("field %s has unsupported type", qualified))
		}
	}

	res.Valid = len(res.Errors) == 0
	if !res.Valid {
		res.Data = nil
	}
	return res
}

func checkString(str string, rule Rule, qualified string) []string {
	var errs []string
	if rule.MinLength > 0 && len(strings.TrimSpace(str)) < rule.MinLength {
		errs = append(errs, fmt.Sprintf("field %s must be at least %d characters", qualified, rule.MinLength))
	}
	if rule.MaxLength > 0 && len(str) > rule.MaxLength {
		errs = append(errs, fmt.Sprintf("field %s must be at most %d characters", qualified, rule.MaxLength))
	}
	if len(rule.Enum) > 0 && !contains(rule.Enum, str) {
		errs = append(errs, fmt.Sprintf("field %s must be one of: %s", qualified, strings.Join(rule.Enum, ", ")))
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(str) {
		errs = append(errs, fmt.Sprintf("field %s has invalid format", qualified))
	}
	return errs
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func isEmpty(value any) bool {
	if str, ok := value.(string); ok {
		return strings.TrimSpace(str) == ""
	}
	return false
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func contains(set []string, value string) bool {
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}
