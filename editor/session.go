// Package editor applies widget-editor actions to a component tree.
//
// A Session holds the authoritative tree and UI state for one editing
// session. Each action is computed against the current tree and the result
// replaces it wholesale. Sessions are not safe for concurrent use.
package editor

import (
	"errors"
	"fmt"
	"time"

	"dashboard-service/models"
	"dashboard-service/tree"
)

var (
	ErrNotContainer = errors.New("target cannot hold children")
	ErrCycle        = errors.New("cannot nest a component inside itself")
	ErrInvalidTab   = errors.New("invalid editor tab")
)

type Session struct {
	components []models.ComponentNode
	state      models.EditorState
	now        func() time.Time
}

// NewSession starts editing components. The slice is copied.
func NewSession(components []models.ComponentNode) *Session {
	return &Session{
		components: tree.Clone(components),
		now:        time.Now,
	}
}

// SetClock replaces the time source used for new component ids.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

// Components returns a copy of the current tree.
func (s *Session) Components() []models.ComponentNode {
	return tree.Clone(s.components)
}

func (s *Session) State() models.EditorState {
	return s.state
}

// Count is the number of content-bearing components in the tree.
func (s *Session) Count() int {
	return models.CountComponents(s.components)
}

func (s *Session) Find(id string) (models.ComponentNode, bool) {
	n, ok := tree.Find(s.components, id)
	if !ok {
		return n, false
	}
	return tree.Clone([]models.ComponentNode{n})[0], true
}

// Add drops a new component of kind at the end of parentID's children, or of
// the root list when parentID is empty, and selects it. The bool is false
// when the parent does not exist.
func (s *Session) Add(kind models.Kind, parentID string) (models.ComponentNode, bool, error) {
	if parentID != "" {
		parent, ok := tree.Find(s.components, parentID)
		if !ok {
			return models.ComponentNode{}, false, nil
		}
		if !parent.Content.Kind.IsContainer() {
			return models.ComponentNode{}, true, fmt.Errorf("%w: %s %q", ErrNotContainer, parent.Content.Kind, parentID)
		}
	}

	node, err := models.NewComponentNode(kind, s.now(), s.components)
	if err != nil {
		return models.ComponentNode{}, true, err
	}
	next, ok := tree.Insert(s.components, parentID, node)
	if !ok {
		return models.ComponentNode{}, false, nil
	}
	s.components = next
	s.state.SelectedID = node.ID
	s.state.ActiveTab = models.TabProperties
	return node, true, nil
}

// Update replaces the content of id with c, keeping its id and children.
// The kind of a component cannot change.
func (s *Session) Update(id string, c models.Component) (bool, error) {
	current, ok := tree.Find(s.components, id)
	if !ok {
		return false, nil
	}
	if c.Kind != current.Content.Kind {
		return true, fmt.Errorf("%w: cannot turn %s into %s", models.ErrKindMismatch, current.Content.Kind, c.Kind)
	}
	if err := c.Validate(); err != nil {
		return true, err
	}
	s.components = tree.Replace(s.components, id, models.ComponentNode{
		ID:       id,
		Content:  c,
		Children: current.Children,
	})
	return true, nil
}

// Delete removes id and its descendants. The selection is cleared if it
// pointed into the removed subtree.
func (s *Session) Delete(id string) bool {
	if !tree.Contains(s.components, id) {
		return false
	}
	s.components = tree.Remove(s.components, id)
	if s.state.SelectedID != "" && !tree.Contains(s.components, s.state.SelectedID) {
		s.state.SelectedID = ""
	}
	return true
}

// Move shifts id one place among its siblings. It reports whether anything
// moved; boundaries and unknown ids are silent no-ops.
func (s *Session) Move(id string, dir tree.Direction) bool {
	if !tree.CanMove(s.components, id, dir) {
		return false
	}
	s.components = tree.MoveSibling(s.components, id, dir)
	return true
}

// Nest re-parents id as the last child of containerID, or as the last root
// node when containerID is empty.
func (s *Session) Nest(id, containerID string) (bool, error) {
	node, ok := tree.Find(s.components, id)
	if !ok {
		return false, nil
	}
	if containerID != "" {
		container, ok := tree.Find(s.components, containerID)
		if !ok {
			return false, nil
		}
		if !container.Content.Kind.IsContainer() {
			return true, fmt.Errorf("%w: %s %q", ErrNotContainer, container.Content.Kind, containerID)
		}
		if containerID == id || tree.Contains(node.Children, containerID) {
			return true, ErrCycle
		}
	}

	next, ok := tree.Insert(tree.Remove(s.components, id), containerID, node)
	if !ok {
		return false, nil
	}
	s.components = next
	return true, nil
}

// Select marks id as the component being edited. An empty id clears the
// selection; an unknown id leaves it unchanged.
func (s *Session) Select(id string) bool {
	if id != "" && !tree.Contains(s.components, id) {
		return false
	}
	s.state.SelectedID = id
	return true
}

func (s *Session) SetTab(tab models.EditorTab) error {
	if !tab.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTab, tab)
	}
	s.state.ActiveTab = tab
	return nil
}
