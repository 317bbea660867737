package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "label", want: KindLabel},
		{in: " Field-Group ", want: KindFieldGroup},
		{in: "text-input", want: KindTextInput},
		{in: "slider", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}
}

func TestNewComponentNode(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	n, err := NewComponentNode(KindLabel, now, nil)
	require.NoError(t, err)
	assert.Equal(t, "label-1700000000000", n.ID)
	assert.Equal(t, LabelProps{Content: "Label", FontSize: DefaultFontSize}, n.Content.Props)

	t.Run("ids are never reused within a tree", func(t *testing.T) {
		existing := []ComponentNode{n}
		second, err := NewComponentNode(KindLabel, now, existing)
		require.NoError(t, err)
		assert.Equal(t, "label-1700000000001", second.ID)

		third, err := NewComponentNode(KindLabel, now, append(existing, second))
		require.NoError(t, err)
		assert.Equal(t, "label-1700000000002", third.ID)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewComponentNode(Kind("slider"), now, nil)
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}

func TestComponentJSON(t *testing.T) {
	t.Run("tree survives encoding", func(t *testing.T) {
		nodes := []ComponentNode{
			{
				ID:      "fg1",
				Content: Component{Kind: KindFieldGroup, Props: FieldGroupProps{Title: "Login", Direction: DirectionRow}},
				Children: []ComponentNode{
					{ID: "l1", Content: Component{Kind: KindLabel, Props: LabelProps{Content: "Hi", Color: "#fff", FontSize: 18}}},
					{ID: "s1", Content: Component{Kind: KindSwitch, Props: SwitchProps{Label: "Remember", Checked: true}}},
				},
			},
			{ID: "b1", Content: Component{Kind: KindButton, Props: ButtonProps{Content: "Go", Variant: VariantOutlined}}},
		}

		data, err := json.Marshal(nodes)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"kind":"field-group"`)
		assert.Contains(t, string(data), `"properties":{"content":"Hi","color":"#fff","fontSize":18}`)

		var decoded []ComponentNode
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, nodes, decoded)
	})

	t.Run("missing properties take defaults", func(t *testing.T) {
		var c Component
		require.NoError(t, json.Unmarshal([]byte(`{"kind":"button","properties":{"content":"OK"}}`), &c))
		assert.Equal(t, ButtonProps{Content: "OK", Variant: VariantContained}, c.Props)

		require.NoError(t, json.Unmarshal([]byte(`{"kind":"text-input"}`), &c))
		assert.Equal(t, TextInputProps{Label: "Text field"}, c.Props)
	})

	t.Run("rejects bad payloads", func(t *testing.T) {
		tests := map[string]struct {
			payload string
			target  error
		}{
			"unknown kind":         {payload: `{"kind":"slider"}`, target: ErrUnknownKind},
			"foreign property":     {payload: `{"kind":"label","properties":{"checked":true}}`, target: ErrInvalidProperty},
			"font size too large":  {payload: `{"kind":"label","properties":{"fontSize":400}}`, target: ErrInvalidProperty},
			"bad direction":        {payload: `{"kind":"field-group","properties":{"direction":"diagonal"}}`, target: ErrInvalidProperty},
			"bad button variant":   {payload: `{"kind":"button","properties":{"variant":"glow"}}`, target: ErrInvalidProperty},
			"color is not hex":     {payload: `{"kind":"label","properties":{"color":"red"}}`, target: ErrInvalidProperty},
			"wrong property types": {payload: `{"kind":"switch","properties":{"checked":"yes"}}`, target: ErrInvalidProperty},
		}
		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				var c Component
				err := json.Unmarshal([]byte(tt.payload), &c)
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.target), "got %v", err)
			})
		}
	})
}

func TestComponentValidate(t *testing.T) {
	assert.NoError(t, Component{Kind: KindSwitch, Props: SwitchProps{}}.Validate())
	assert.ErrorIs(t, Component{Kind: KindSwitch}.Validate(), ErrKindMismatch)
	assert.ErrorIs(t, Component{Kind: KindSwitch, Props: LabelProps{FontSize: 12}}.Validate(), ErrKindMismatch)
	assert.ErrorIs(t, Component{Kind: "nope", Props: SwitchProps{}}.Validate(), ErrUnknownKind)

	long := strings.Repeat("x", maxTextLength+1)
	props := TextInputProps{Label: long, Placeholder: long, Value: long}
	for i := 0; i < 20; i++ {
		err := props.Validate()
		require.ErrorIs(t, err, ErrInvalidProperty)
		assert.Contains(t, err.Error(), "label longer than")
	}
}

func TestHasContent(t *testing.T) {
	tests := []struct {
		name string
		c    Component
		want bool
	}{
		{name: "label with text", c: Component{Kind: KindLabel, Props: LabelProps{Content: "Hi", FontSize: 14}}, want: true},
		{name: "blank label", c: Component{Kind: KindLabel, Props: LabelProps{Content: "  ", FontSize: 14}}, want: false},
		{name: "button with text", c: Component{Kind: KindButton, Props: ButtonProps{Content: "Go"}}, want: true},
		{name: "switch", c: Component{Kind: KindSwitch, Props: SwitchProps{Label: "On"}}, want: false},
		{name: "field group", c: Component{Kind: KindFieldGroup, Props: FieldGroupProps{Title: "T"}}, want: false},
		{name: "text input", c: Component{Kind: KindTextInput, Props: TextInputProps{Value: "v"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasContent(ComponentNode{ID: "x", Content: tt.c}))
		})
	}
}

func TestCountComponents(t *testing.T) {
	nodes := []ComponentNode{
		{
			ID:      "fg1",
			Content: Component{Kind: KindFieldGroup, Props: FieldGroupProps{Direction: DirectionColumn}},
			Children: []ComponentNode{
				{ID: "l1", Content: Component{Kind: KindLabel, Props: LabelProps{Content: "Hi", FontSize: 14}}},
			},
		},
	}
	assert.Equal(t, 1, CountComponents(nodes))
	assert.Equal(t, 0, CountComponents(nil))
}

func TestValidateTree(t *testing.T) {
	label := func(id string) ComponentNode {
		return ComponentNode{ID: id, Content: Component{Kind: KindLabel, Props: LabelProps{Content: "x", FontSize: 14}}}
	}
	group := func(id string, children ...ComponentNode) ComponentNode {
		return ComponentNode{ID: id, Content: Component{Kind: KindFieldGroup, Props: FieldGroupProps{Direction: DirectionRow}}, Children: children}
	}

	assert.NoError(t, ValidateTree(nil))
	assert.NoError(t, ValidateTree([]ComponentNode{group("g", label("a"), group("h", label("b")))}))

	t.Run("duplicate ids", func(t *testing.T) {
		err := ValidateTree([]ComponentNode{label("a"), group("g", label("a"))})
		assert.ErrorIs(t, err, ErrInvalidTree)
	})

	t.Run("missing id", func(t *testing.T) {
		assert.ErrorIs(t, ValidateTree([]ComponentNode{label("")}), ErrInvalidTree)
	})

	t.Run("children under a leaf kind", func(t *testing.T) {
		bad := label("a")
		bad.Children = []ComponentNode{label("b")}
		assert.ErrorIs(t, ValidateTree([]ComponentNode{bad}), ErrInvalidTree)
	})

	t.Run("invalid properties deep in the tree", func(t *testing.T) {
		bad := label("b")
		bad.Content.Props = LabelProps{Content: "x", FontSize: 1}
		assert.ErrorIs(t, ValidateTree([]ComponentNode{group("g", bad)}), ErrInvalidProperty)
	})
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"sales", "q3-report"}, NormalizeTags([]string{" Sales ", "Q3  Report", "", "sales"}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}
