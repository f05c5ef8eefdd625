package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"github.com/your-org/sitegen/internal/prompt"
)

var errBusinessDataRequired = errors.New("business data is required")

const businessDataSchema = `{
  "type": "object",
  "required": ["businessName"],
  "properties": {
    "businessName": {"type": "string", "minLength": 1, "maxLength": 200},
    "services":     {"type": "string", "maxLength": 4000},
    "serviceArea":  {"type": "string", "maxLength": 1000},
    "phone":        {"type": "string", "maxLength": 50},
    "email":        {"type": "string", "maxLength": 320},
    "hours":        {"type": "string", "maxLength": 500},
    "location":     {"type": "string", "maxLength": 500}
  }
}`

var businessSchema = mustSchema(businessDataSchema)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return s
}

// parseBusinessData validates raw against the business profile schema and
// decodes it. A missing or null payload returns errBusinessDataRequired.
func parseBusinessData(raw json.RawMessage) (prompt.BusinessData, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return prompt.BusinessData{}, errBusinessDataRequired
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return prompt.BusinessData{}, fmt.Errorf("invalid business data: %w", err)
	}

	result, err := businessSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return prompt.BusinessData{}, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return prompt.BusinessData{}, fmt.Errorf("business data validation failed: %s", strings.Join(errs, "; "))
	}

	var d prompt.BusinessData
	if err := json.Unmarshal(raw, &d); err != nil {
		return prompt.BusinessData{}, fmt.Errorf("invalid business data: %w", err)
	}
	return d, nil
}

// optionalBusinessData decodes chat context leniently; it only needs the name.
func optionalBusinessData(raw json.RawMessage) prompt.BusinessData {
	var d prompt.BusinessData
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &d)
	}
	return d
}
