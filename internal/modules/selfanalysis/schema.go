package selfanalysis

import "strings"

// Schema derives a strict JSON schema for the structured output of step.
// The schema only uses keywords every provider accepts; value constraints
// are left to Validate.
func Schema(step Step) (map[string]any, error) {
	c, err := GetContract(step)
	if err != nil {
		return nil, err
	}
	props := map[string]any{}
	required := []string{}
	for _, r := range c.Rules {
		props[r.Name] = ruleSchema(r)
		required = append(required, r.Name)
	}
	props[NextStepField] = map[string]any{
		"type":        "string",
		"enum":        []any{string(c.NextStep), string(StepStay)},
		"description": "advance to the next step, or STAY to keep asking about this one",
	}
	required = append(required, NextStepField)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}, nil
}

// SchemaName is the structured output name sent to providers.
func SchemaName(step Step) string {
	return "self_analysis_" + strings.ToLower(string(step))
}

func ruleSchema(r FieldRule) map[string]any {
	out := map[string]any{}
	switch r.Type {
	case FieldString:
		out["type"] = "string"
		if len(r.Enum) > 0 {
			enum := make([]any, len(r.Enum))
			for i, e := range r.Enum {
				enum[i] = e
			}
			out["enum"] = enum
		}
	case FieldInteger:
		out["type"] = "integer"
	case FieldNumber:
		out["type"] = "number"
	case FieldList:
		out["type"] = "array"
		if r.Elem != nil {
			out["items"] = ruleSchema(*r.Elem)
		} else {
			out["items"] = map[string]any{"type": "string"}
		}
	case FieldObject:
		props := map[string]any{}
		required := []string{}
		for _, f := range r.Fields {
			props[f.Name] = ruleSchema(f)
			required = append(required, f.Name)
		}
		out["type"] = "object"
		out["properties"] = props
		out["required"] = required
		out["additionalProperties"] = false
	}
	if r.Description != "" {
		out["description"] = r.Description
	}
	return out
}
