package models

// EditorTab is a pane of the widget editor's side panel.
type EditorTab int

const (
	TabPalette EditorTab = iota
	TabProperties
	TabPreview
)

func (t EditorTab) Valid() bool {
	return t >= TabPalette && t <= TabPreview
}

// EditorState is the widget editor's UI state, kept apart from the tree so it
// can be passed around and serialized on its own.
type EditorState struct {
	SelectedID string    `json:"selectedId,omitempty"`
	ActiveTab  EditorTab `json:"activeTab"`
}
