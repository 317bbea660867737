package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"dashboard-service/tree"
)

// Node types used by the tiling-layout model.
const (
	LayoutRow    = "row"
	LayoutTabSet = "tabset"
	LayoutTab    = "tab"
	LayoutBorder = "border"
)

var ErrInvalidLayout = errors.New("invalid layout")

// DefaultLayout is an empty tiling layout with a single root row.
var DefaultLayout = json.RawMessage(`{"global":{},"borders":[],"layout":{"type":"row","weight":100,"children":[]}}`)

// LayoutItem is the part of a tiling-layout node this service reads.
// Everything else in the payload is carried through untouched.
type LayoutItem struct {
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	Component string `json:"component,omitempty"`
}

// LayoutNode is one node of a parsed dashboard layout.
type LayoutNode = tree.Node[LayoutItem]

type rawLayoutNode struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Component string          `json:"component"`
	Children  []rawLayoutNode `json:"children"`
}

type rawLayoutModel struct {
	Borders []rawLayoutNode `json:"borders"`
	Layout  *rawLayoutNode  `json:"layout"`
}

// ParseLayout reads a layout payload into a tree. The main layout comes first,
// followed by any borders. Nodes without an id get a generated one so the
// tree operations can address them.
func ParseLayout(raw json.RawMessage) ([]LayoutNode, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var model rawLayoutModel
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	seq := 0
	var convert func(r rawLayoutNode) LayoutNode
	convert = func(r rawLayoutNode) LayoutNode {
		seq++
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("#%s-%d", r.Type, seq)
		}
		n := LayoutNode{ID: id, Content: LayoutItem{Type: r.Type, Name: r.Name, Component: r.Component}}
		for _, c := range r.Children {
			n.Children = append(n.Children, convert(c))
		}
		return n
	}

	var nodes []LayoutNode
	if model.Layout != nil {
		nodes = append(nodes, convert(*model.Layout))
	}
	for _, b := range model.Borders {
		if b.Type == "" {
			b.Type = LayoutBorder
		}
		nodes = append(nodes, convert(b))
	}
	return nodes, nil
}

func isWidgetTab(n LayoutNode) bool {
	return n.Content.Type == LayoutTab && n.Content.Component != ""
}

// CountLayoutComponents counts tabs that host a component.
func CountLayoutComponents(raw json.RawMessage) (int, error) {
	nodes, err := ParseLayout(raw)
	if err != nil {
		return 0, err
	}
	return tree.CountLeaves(nodes, isWidgetTab), nil
}

// WidgetRefs lists, once each and in layout order, the components hosted by
// the layout's tabs.
func WidgetRefs(raw json.RawMessage) ([]string, error) {
	nodes, err := ParseLayout(raw)
	if err != nil {
		return nil, err
	}
	var refs []string
	seen := make(map[string]bool)
	tree.Walk(nodes, func(n LayoutNode, _ int) bool {
		if isWidgetTab(n) && !seen[n.Content.Component] {
			seen[n.Content.Component] = true
			refs = append(refs, n.Content.Component)
		}
		return true
	})
	return refs, nil
}
