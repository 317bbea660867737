package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// Properties is implemented by the property record of each component kind.
type Properties interface {
	Kind() Kind
	Validate() error
}

// Label font sizes, in pixels.
const (
	MinFontSize     = 6
	MaxFontSize     = 96
	DefaultFontSize = 14
	maxTextLength   = 500
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// SwitchProps configures an on/off toggle.
type SwitchProps struct {
	Label    string `json:"label"`
	Checked  bool   `json:"checked"`
	Disabled bool   `json:"disabled"`
}

func (SwitchProps) Kind() Kind { return KindSwitch }

func (p SwitchProps) Validate() error {
	return checkLength("label", p.Label)
}

// FieldGroupProps configures a container laying its children out in a row or column.
type FieldGroupProps struct {
	Title     string `json:"title"`
	Direction string `json:"direction"`
}

const (
	DirectionColumn = "column"
	DirectionRow    = "row"
)

func (FieldGroupProps) Kind() Kind { return KindFieldGroup }

func (p FieldGroupProps) Validate() error {
	if p.Direction != DirectionColumn && p.Direction != DirectionRow {
		return fmt.Errorf("%w: direction must be %q or %q, got %q", ErrInvalidProperty, DirectionColumn, DirectionRow, p.Direction)
	}
	return checkLength("title", p.Title)
}

// LabelProps configures a static text label.
type LabelProps struct {
	Content  string `json:"content"`
	Color    string `json:"color,omitempty"`
	FontSize int    `json:"fontSize"`
}

func (LabelProps) Kind() Kind { return KindLabel }

func (p LabelProps) Validate() error {
	if p.FontSize < MinFontSize || p.FontSize > MaxFontSize {
		return fmt.Errorf("%w: font size %d outside %d-%d", ErrInvalidProperty, p.FontSize, MinFontSize, MaxFontSize)
	}
	if p.Color != "" && !hexColor.MatchString(p.Color) {
		return fmt.Errorf("%w: color %q is not a hex color", ErrInvalidProperty, p.Color)
	}
	return checkLength("content", p.Content)
}

// ButtonProps configures a clickable button.
type ButtonProps struct {
	Content  string `json:"content"`
	Variant  string `json:"variant"`
	Disabled bool   `json:"disabled"`
}

// Button variants.
const (
	VariantContained = "contained"
	VariantOutlined  = "outlined"
	VariantText      = "text"
)

func (ButtonProps) Kind() Kind { return KindButton }

func (p ButtonProps) Validate() error {
	switch p.Variant {
	case VariantContained, VariantOutlined, VariantText:
	default:
		return fmt.Errorf("%w: unknown button variant %q", ErrInvalidProperty, p.Variant)
	}
	return checkLength("content", p.Content)
}

// TextInputProps configures a single-line text field.
type TextInputProps struct {
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value,omitempty"`
	Required    bool   `json:"required"`
}

func (TextInputProps) Kind() Kind { return KindTextInput }

func (p TextInputProps) Validate() error {
	fields := []struct{ name, value string }{
		{"label", p.Label},
		{"placeholder", p.Placeholder},
		{"value", p.Value},
	}
	for _, f := range fields {
		if err := checkLength(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// DefaultProperties returns the record a freshly dropped component starts with.
func DefaultProperties(kind Kind) (Properties, error) {
	switch kind {
	case KindSwitch:
		return SwitchProps{Label: "Switch"}, nil
	case KindFieldGroup:
		return FieldGroupProps{Direction: DirectionColumn}, nil
	case KindLabel:
		return LabelProps{Content: "Label", FontSize: DefaultFontSize}, nil
	case KindButton:
		return ButtonProps{Content: "Button", Variant: VariantContained}, nil
	case KindTextInput:
		return TextInputProps{Label: "Text field"}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// DecodeProperties decodes raw JSON over the defaults for kind and validates
// the result. Empty or null input yields the defaults.
func DecodeProperties(kind Kind, raw json.RawMessage) (Properties, error) {
	defaults, err := DefaultProperties(kind)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return defaults, nil
	}

	var props Properties
	switch p := defaults.(type) {
	case SwitchProps:
		err = strictUnmarshal(raw, &p)
		props = p
	case FieldGroupProps:
		err = strictUnmarshal(raw, &p)
		props = p
	case LabelProps:
		err = strictUnmarshal(raw, &p)
		props = p
	case ButtonProps:
		err = strictUnmarshal(raw, &p)
		props = p
	case TextInputProps:
		err = strictUnmarshal(raw, &p)
		props = p
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s properties: %v", ErrInvalidProperty, kind, err)
	}
	if err := props.Validate(); err != nil {
		return nil, err
	}
	return props, nil
}

func strictUnmarshal(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func checkLength(field, v string) error {
	if len(v) > maxTextLength {
		return fmt.Errorf("%w: %s longer than %d bytes", ErrInvalidProperty, field, maxTextLength)
	}
	return nil
}
