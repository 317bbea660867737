package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dashboard-service/tree"
)

var (
	ErrUnknownKind     = errors.New("unknown component kind")
	ErrKindMismatch    = errors.New("properties do not match component kind")
	ErrInvalidProperty = errors.New("invalid component property")
	ErrInvalidTree     = errors.New("invalid component tree")
)

// Kind identifies a component's role and selects its property record.
type Kind string

const (
	KindSwitch     Kind = "switch"
	KindFieldGroup Kind = "field-group"
	KindLabel      Kind = "label"
	KindButton     Kind = "button"
	KindTextInput  Kind = "text-input"
)

// Kinds lists every kind in palette order.
var Kinds = []Kind{KindFieldGroup, KindLabel, KindButton, KindSwitch, KindTextInput}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// IsContainer reports whether nodes of this kind may hold children.
func (k Kind) IsContainer() bool {
	return k == KindFieldGroup
}

// Component is the content of a tree node: a kind plus its typed properties.
type Component struct {
	Kind  Kind
	Props Properties
}

// ComponentNode is one entry of a widget's component tree.
type ComponentNode = tree.Node[Component]

type componentJSON struct {
	Kind       Kind            `json:"kind"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// NewComponent returns a component of the given kind with default properties.
func NewComponent(kind Kind) (Component, error) {
	props, err := DefaultProperties(kind)
	if err != nil {
		return Component{}, err
	}
	return Component{Kind: kind, Props: props}, nil
}

// Validate checks that the properties belong to the kind and hold legal values.
func (c Component) Validate() error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	if c.Props == nil {
		return fmt.Errorf("%w: %s has no properties", ErrKindMismatch, c.Kind)
	}
	if c.Props.Kind() != c.Kind {
		return fmt.Errorf("%w: %s properties on a %s", ErrKindMismatch, c.Props.Kind(), c.Kind)
	}
	return c.Props.Validate()
}

func (c Component) MarshalJSON() ([]byte, error) {
	props, err := json.Marshal(c.Props)
	if err != nil {
		return nil, err
	}
	return json.Marshal(componentJSON{Kind: c.Kind, Properties: props})
}

// UnmarshalJSON decodes the properties into the record for the kind. Fields
// missing from the payload keep their defaults.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw componentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := ParseKind(string(raw.Kind))
	if err != nil {
		return err
	}
	props, err := DecodeProperties(kind, raw.Properties)
	if err != nil {
		return err
	}
	c.Kind = kind
	c.Props = props
	return nil
}

// NewComponentNode creates a node with default properties and an id of the
// form "<kind>-<unix millis>". The numeric part is bumped until the id is
// unused in existing.
func NewComponentNode(kind Kind, now time.Time, existing []ComponentNode) (ComponentNode, error) {
	c, err := NewComponent(kind)
	if err != nil {
		return ComponentNode{}, err
	}
	stamp := now.UnixMilli()
	id := fmt.Sprintf("%s-%d", kind, stamp)
	for tree.Contains(existing, id) {
		stamp++
		id = fmt.Sprintf("%s-%d", kind, stamp)
	}
	return ComponentNode{ID: id, Content: c}, nil
}

// HasContent is the leaf predicate used for component counts: a label or
// button whose content is not blank.
func HasContent(n ComponentNode) bool {
	switch p := n.Content.Props.(type) {
	case LabelProps:
		return strings.TrimSpace(p.Content) != ""
	case ButtonProps:
		return strings.TrimSpace(p.Content) != ""
	}
	return false
}

// CountComponents counts content-bearing components anywhere in the tree.
func CountComponents(nodes []ComponentNode) int {
	return tree.CountLeaves(nodes, HasContent)
}

// ValidateTree checks a tree received from outside: non-empty unique ids,
// valid components, and children only under container kinds.
func ValidateTree(nodes []ComponentNode) error {
	seen := make(map[string]bool)
	var err error
	tree.Walk(nodes, func(n ComponentNode, _ int) bool {
		switch {
		case n.ID == "":
			err = fmt.Errorf("%w: node without id", ErrInvalidTree)
		case seen[n.ID]:
			err = fmt.Errorf("%w: duplicate id %q", ErrInvalidTree, n.ID)
		case len(n.Children) > 0 && !n.Content.Kind.IsContainer():
			err = fmt.Errorf("%w: %s %q cannot hold children", ErrInvalidTree, n.Content.Kind, n.ID)
		default:
			if verr := n.Content.Validate(); verr != nil {
				err = fmt.Errorf("node %q: %w", n.ID, verr)
			}
		}
		seen[n.ID] = true
		return err == nil
	})
	return err
}
