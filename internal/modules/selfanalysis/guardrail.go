package selfanalysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// NextStepField is the optional payload key an agent uses to request a transition.
const NextStepField = "next_step"

// CountQuestionMarks counts half-width and full-width question marks together.
func CountQuestionMarks(s string) int {
	return strings.Count(s, "?") + strings.Count(s, "？")
}

// Validate checks payload against the contract of step and returns the first
// broken rule as a *GuardrailViolation. It never mutates payload.
func Validate(step Step, payload Payload) error {
	c, err := GetContract(step)
	if err != nil {
		return err
	}
	if payload == nil {
		return &GuardrailViolation{Step: step, Reason: "payload is empty"}
	}
	v := validator{step: step}
	for _, rule := range c.Rules {
		raw, ok := payload[rule.Name]
		if err := v.field(rule.Name, rule, raw, ok); err != nil {
			return err
		}
	}

	if c.QuestionField != "" {
		q, _ := payload[c.QuestionField].(string)
		if n := CountQuestionMarks(q); n != 1 {
			return v.fail(c.QuestionField, "%s must contain exactly one question mark, found %d", c.QuestionField, n)
		}
	}

	if raw, ok := payload[NextStepField]; ok && raw != nil {
		s, isStr := raw.(string)
		if !isStr {
			return v.fail(NextStepField, "%s must be a string", NextStepField)
		}
		next := Step(strings.ToUpper(strings.TrimSpace(s)))
		if !isStaySignal(s) && next != step && next != c.NextStep {
			return v.fail(NextStepField, "%s %q is not %s or %s", NextStepField, s, c.NextStep, StepStay)
		}
	}
	return nil
}

type validator struct {
	step Step
}

func (v validator) fail(field, format string, args ...any) error {
	return &GuardrailViolation{Step: v.step, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (v validator) field(path string, rule FieldRule, raw any, present bool) error {
	if !present || raw == nil {
		if rule.Optional {
			return nil
		}
		return v.fail(path, "%s is required", path)
	}
	switch rule.Type {
	case FieldString:
		s, ok := raw.(string)
		if !ok {
			return v.fail(path, "%s must be a string", path)
		}
		return v.str(path, rule, s)
	case FieldInteger:
		n, ok := asNumber(raw)
		if !ok || n != math.Trunc(n) {
			return v.fail(path, "%s must be an integer", path)
		}
		return v.rng(path, rule, n)
	case FieldNumber:
		n, ok := asNumber(raw)
		if !ok {
			return v.fail(path, "%s must be a number", path)
		}
		return v.rng(path, rule, n)
	case FieldList:
		items, ok := asList(raw)
		if !ok {
			return v.fail(path, "%s must be a list", path)
		}
		return v.list(path, rule, items)
	case FieldObject:
		obj, ok := asObject(raw)
		if !ok {
			return v.fail(path, "%s must be an object", path)
		}
		for _, sub := range rule.Fields {
			subRaw, subOK := obj[sub.Name]
			if err := v.field(joinPath(path, sub.Name), sub, subRaw, subOK); err != nil {
				return err
			}
		}
		return nil
	default:
		return v.fail(path, "%s has unsupported rule type %q", path, rule.Type)
	}
}

func (v validator) str(path string, rule FieldRule, s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		if rule.AllowEmpty {
			return nil
		}
		return v.fail(path, "%s must not be empty", path)
	}
	if rule.MaxRunes > 0 {
		if n := utf8.RuneCountInString(trimmed); n > rule.MaxRunes {
			return v.fail(path, "%s must be at most %d characters, got %d", path, rule.MaxRunes, n)
		}
	}
	if rule.SingleToken && len(strings.Fields(trimmed)) != 1 {
		return v.fail(path, "%s must be a single word", path)
	}
	if len(rule.Suffixes) > 0 && !hasAnySuffix(trimmed, rule.Suffixes) {
		return v.fail(path, "%s must end with one of %s", path, strings.Join(rule.Suffixes, ", "))
	}
	if len(rule.Enum) > 0 && !contains(rule.Enum, trimmed) {
		return v.fail(path, "%s must be one of %s, got %q", path, strings.Join(rule.Enum, ", "), trimmed)
	}
	return nil
}

func (v validator) rng(path string, rule FieldRule, n float64) error {
	if rule.Range == nil {
		return nil
	}
	if n < rule.Range.Min || n > rule.Range.Max {
		return v.fail(path, "%s must be between %g and %g, got %g", path, rule.Range.Min, rule.Range.Max, n)
	}
	return nil
}

func (v validator) list(path string, rule FieldRule, items []any) error {
	if rule.MinItems > 0 && len(items) < rule.MinItems {
		return v.fail(path, "%s needs at least %d items, got %d", path, rule.MinItems, len(items))
	}
	if rule.MaxItems > 0 && len(items) > rule.MaxItems {
		return v.fail(path, "%s allows at most %d items, got %d", path, rule.MaxItems, len(items))
	}
	if rule.Elem != nil {
		for i, item := range items {
			if err := v.field(fmt.Sprintf("%s[%d]", path, i), *rule.Elem, item, true); err != nil {
				return err
			}
		}
	}
	if rule.UniqueItems {
		seen := map[string]bool{}
		for _, item := range items {
			key := itemKey(item)
			if seen[key] {
				return v.fail(path, "%s contains duplicate item %s", path, key)
			}
			seen[key] = true
		}
	}
	if rule.SortedBy != "" {
		prev := math.Inf(-1)
		for i, item := range items {
			obj, _ := asObject(item)
			n, ok := asNumber(obj[rule.SortedBy])
			if !ok {
				return v.fail(path, "%s[%d].%s must be a number", path, i, rule.SortedBy)
			}
			if n < prev {
				return v.fail(path, "%s must be sorted ascending by %s", path, rule.SortedBy)
			}
			prev = n
		}
	}
	return nil
}

func asNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asList(raw any) ([]any, bool) {
	switch l := raw.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func asObject(raw any) (map[string]any, bool) {
	switch o := raw.(type) {
	case map[string]any:
		return o, true
	case Payload:
		return o, true
	default:
		return nil, false
	}
}

func itemKey(item any) string {
	if s, ok := item.(string); ok {
		return fmt.Sprintf("%q", strings.TrimSpace(s))
	}
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprintf("%v", item)
	}
	return string(b)
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
