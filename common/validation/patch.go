package validation

import (
	"encoding/json"
	"fmt"
)

// FieldKind is the JSON type a merge patch may assign to a field
type FieldKind int

const (
	KindString FieldKind = iota
	KindBool
	KindStringList
	// KindReadOnly fields are accepted and left to the caller to discard
	KindReadOnly
)

// MergePatchValidator validates RFC 7396 merge patch documents against a flat
// object schema before they are applied. null is always allowed and clears the field.
type MergePatchValidator struct {
	fields       map[string]FieldKind
	maxListItems int
}

// NewMergePatchValidator creates a validator for the given fields
func NewMergePatchValidator(fields map[string]FieldKind, maxListItems int) *MergePatchValidator {
	return &MergePatchValidator{
		fields:       fields,
		maxListItems: maxListItems,
	}
}

// Validate checks that doc is a JSON object that only touches known fields
// with values of the right type
func (v *MergePatchValidator) Validate(doc []byte) error {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(doc, &patch); err != nil {
		return fmt.Errorf("merge patch must be a JSON object: %w", err)
	}
	// null decodes into a nil map and would replace the whole document
	if patch == nil {
		return fmt.Errorf("merge patch must be a JSON object, got null")
	}

	for name, raw := range patch {
		kind, ok := v.fields[name]
		if !ok {
			return fmt.Errorf("field '%s': unknown field", name)
		}
		if err := v.validateField(name, kind, raw); err != nil {
			return err
		}
	}

	return nil
}

// validateField validates a single patched value
func (v *MergePatchValidator) validateField(name string, kind FieldKind, raw json.RawMessage) error {
	if kind == KindReadOnly || string(raw) == "null" {
		return nil
	}

	switch kind {
	case KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("field '%s': must be a string", name)
		}

	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("field '%s': must be a boolean", name)
		}

	case KindStringList:
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("field '%s': must be an array of strings (hint: use [\"value\"], not \"value\")", name)
		}
		if v.maxListItems > 0 && len(items) > v.maxListItems {
			return fmt.Errorf("field '%s': cannot hold more than %d items (attempted: %d)", name, v.maxListItems, len(items))
		}

	default:
		return fmt.Errorf("field '%s': unsupported field kind %d", name, kind)
	}

	return nil
}
