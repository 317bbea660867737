// Package tree provides pure query and edit operations over ordered trees of
// identified nodes. No operation mutates the slice or nodes passed in: edits
// return a new root list that shares untouched subtrees with the input.
//
// Lookups that miss are reported with a boolean, never an error. Edits
// addressed to an absent id return the input unchanged.
package tree

import "strings"

// Node is a single entry in a tree. Children is empty for leaves.
type Node[T any] struct {
	ID       string    `json:"id"`
	Content  T         `json:"content"`
	Children []Node[T] `json:"children,omitempty"`
}

// Direction is the way MoveSibling shifts a node among its siblings.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// ParseDirection accepts "up" or "down" in any case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return Up, false
}

// Find returns the first node, depth-first, whose ID matches id.
// The returned node shares its Children with the tree; Clone it before mutating.
func Find[T any](nodes []Node[T], id string) (Node[T], bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if found, ok := Find(n.Children, id); ok {
			return found, true
		}
	}
	var zero Node[T]
	return zero, false
}

// Contains reports whether a node with id exists anywhere in nodes.
func Contains[T any](nodes []Node[T], id string) bool {
	_, ok := Find(nodes, id)
	return ok
}

// FindParent returns the direct parent of the node with childID. Top-level
// nodes and absent ids have no parent.
func FindParent[T any](nodes []Node[T], childID string) (Node[T], bool) {
	for _, n := range nodes {
		for _, c := range n.Children {
			if c.ID == childID {
				return n, true
			}
		}
		if parent, ok := FindParent(n.Children, childID); ok {
			return parent, true
		}
	}
	var zero Node[T]
	return zero, false
}

// Replace substitutes the whole subtree rooted at id with replacement.
func Replace[T any](nodes []Node[T], id string, replacement Node[T]) []Node[T] {
	out, _ := rewrite(nodes, id, func(siblings []Node[T], i int) ([]Node[T], bool) {
		next := clone(siblings)
		next[i] = replacement
		return next, true
	})
	return out
}

// Remove excises the node with id, together with its descendants, from
// whichever level it occupies.
func Remove[T any](nodes []Node[T], id string) []Node[T] {
	out, _ := rewrite(nodes, id, func(siblings []Node[T], i int) ([]Node[T], bool) {
		next := make([]Node[T], 0, len(siblings)-1)
		next = append(next, siblings[:i]...)
		next = append(next, siblings[i+1:]...)
		return next, true
	})
	return out
}

// MoveSibling swaps the node with its neighbour in the given direction.
// Moving the first node up or the last node down leaves the tree unchanged.
func MoveSibling[T any](nodes []Node[T], id string, dir Direction) []Node[T] {
	out, _ := rewrite(nodes, id, func(siblings []Node[T], i int) ([]Node[T], bool) {
		j := neighbour(i, dir)
		if j < 0 || j >= len(siblings) {
			return siblings, false
		}
		next := clone(siblings)
		next[i], next[j] = next[j], next[i]
		return next, true
	})
	return out
}

// CanMove reports whether MoveSibling(nodes, id, dir) would change the tree.
func CanMove[T any](nodes []Node[T], id string, dir Direction) bool {
	siblings, i, ok := siblingsOf(nodes, id)
	if !ok {
		return false
	}
	j := neighbour(i, dir)
	return j >= 0 && j < len(siblings)
}

// Insert appends node as the last child of parentID, or to the root list when
// parentID is empty. It reports false, leaving the tree unchanged, when the
// parent does not exist.
func Insert[T any](nodes []Node[T], parentID string, node Node[T]) ([]Node[T], bool) {
	if parentID == "" {
		next := make([]Node[T], 0, len(nodes)+1)
		next = append(next, nodes...)
		return append(next, node), true
	}
	return rewrite(nodes, parentID, func(siblings []Node[T], i int) ([]Node[T], bool) {
		next := clone(siblings)
		parent := next[i]
		children := make([]Node[T], 0, len(parent.Children)+1)
		children = append(children, parent.Children...)
		parent.Children = append(children, node)
		next[i] = parent
		return next, true
	})
}

// CountLeaves counts every node satisfying pred. Children are always visited,
// whether or not their container satisfies pred.
func CountLeaves[T any](nodes []Node[T], pred func(Node[T]) bool) int {
	count := 0
	for _, n := range nodes {
		if pred(n) {
			count++
		}
		count += CountLeaves(n.Children, pred)
	}
	return count
}

// Walk visits nodes in pre-order with their depth (0 for the root list).
// Returning false from fn stops the walk; Walk then returns false too.
func Walk[T any](nodes []Node[T], fn func(n Node[T], depth int) bool) bool {
	return walk(nodes, 0, fn)
}

func walk[T any](nodes []Node[T], depth int, fn func(Node[T], int) bool) bool {
	for _, n := range nodes {
		if !fn(n, depth) {
			return false
		}
		if !walk(n.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// IDs lists node ids in pre-order.
func IDs[T any](nodes []Node[T]) []string {
	var ids []string
	Walk(nodes, func(n Node[T], _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Clone deep-copies the tree structure. Content values are copied by assignment.
func Clone[T any](nodes []Node[T]) []Node[T] {
	if nodes == nil {
		return nil
	}
	out := make([]Node[T], len(nodes))
	for i, n := range nodes {
		out[i] = Node[T]{ID: n.ID, Content: n.Content, Children: Clone(n.Children)}
	}
	return out
}

// rewrite finds the sibling list holding id and lets fn produce its
// replacement. Every list on the path back to the root is copied, so the input
// is never written to.
func rewrite[T any](nodes []Node[T], id string, fn func(siblings []Node[T], i int) ([]Node[T], bool)) ([]Node[T], bool) {
	for i, n := range nodes {
		if n.ID == id {
			return fn(nodes, i)
		}
		if children, ok := rewrite(n.Children, id, fn); ok {
			next := clone(nodes)
			next[i].Children = children
			return next, true
		}
	}
	return nodes, false
}

func siblingsOf[T any](nodes []Node[T], id string) ([]Node[T], int, bool) {
	for i, n := range nodes {
		if n.ID == id {
			return nodes, i, true
		}
		if siblings, j, ok := siblingsOf(n.Children, id); ok {
			return siblings, j, true
		}
	}
	return nil, -1, false
}

func neighbour(i int, dir Direction) int {
	if dir == Down {
		return i + 1
	}
	return i - 1
}

func clone[T any](nodes []Node[T]) []Node[T] {
	out := make([]Node[T], len(nodes))
	copy(out, nodes)
	return out
}
