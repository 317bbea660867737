// Package catalog filters and sorts lists of saved dashboards and widgets.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dashboard-service/models"
)

// Item is what the catalog needs to know about a saved entity.
type Item interface {
	GetName() string
	GetTags() []string
	Created() time.Time
	Updated() time.Time
	Count() int
}

// publicItem is implemented by entities that carry a visibility flag.
type publicItem interface {
	IsPublic() bool
}

type Visibility string

const (
	VisibilityAll     Visibility = "all"
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type SortField string

const (
	SortUpdated    SortField = "updated"
	SortCreated    SortField = "created"
	SortName       SortField = "name"
	SortComponents SortField = "components"
)

// Query describes a list request. The zero value matches everything and
// keeps stored order.
type Query struct {
	Search     string
	Tags       []string
	Visibility Visibility
	SortBy     SortField
	Desc       bool
}

// ParseVisibility accepts "", "all", "public" or "private".
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case "", VisibilityAll:
		return VisibilityAll, nil
	case VisibilityPublic, VisibilityPrivate:
		return v, nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

// ParseSort accepts "", "updated", "created", "name" or "components".
func ParseSort(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return "", nil
	case SortUpdated, SortCreated, SortName, SortComponents:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// Apply filters items with q, then stable-sorts the survivors. The input
// slice is not reordered.
func Apply[T Item](items []T, q Query) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	tags := models.NormalizeTags(q.Tags)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, search, tags, q.Visibility) {
			out = append(out, item)
		}
	}

	if less := comparator[T](q.SortBy); less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			if q.Desc {
				return less(out[j], out[i])
			}
			return less(out[i], out[j])
		})
	}
	return out
}

func matches(item Item, search string, tags []string, vis Visibility) bool {
	if search != "" && !matchesSearch(item, search) {
		return false
	}
	if len(tags) > 0 && !hasAllTags(item.GetTags(), tags) {
		return false
	}
	if vis == VisibilityPublic || vis == VisibilityPrivate {
		p, ok := item.(publicItem)
		if !ok {
			return true
		}
		return p.IsPublic() == (vis == VisibilityPublic)
	}
	return true
}

func matchesSearch(item Item, search string) bool {
	if strings.Contains(strings.ToLower(item.GetName()), search) {
		return true
	}
	for _, tag := range item.GetTags() {
		if strings.Contains(tag, search) {
			return true
		}
	}
	return false
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, t := range have {
		set[t] = true
	}
	for _, t := range want {
		if !set[t] {
			return false
		}
	}
	return true
}

func comparator[T Item](field SortField) func(a, b T) bool {
	switch field {
	case SortName:
		return func(a, b T) bool {
			return strings.ToLower(a.GetName()) < strings.ToLower(b.GetName())
		}
	case SortCreated:
		return func(a, b T) bool { return a.Created().Before(b.Created()) }
	case SortUpdated:
		return func(a, b T) bool { return a.Updated().Before(b.Updated()) }
	case SortComponents:
		return func(a, b T) bool { return a.Count() < b.Count() }
	}
	return nil
}
