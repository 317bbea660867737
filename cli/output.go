package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"gopkg.in/yaml.v3"

	"dashboard-service/models"
	"dashboard-service/tree"
)

// OutputFormat selects how list and show commands print results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

func parseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// writeStructured prints data as JSON or YAML. YAML goes through JSON first
// so raw layout payloads and component properties keep their JSON shape.
func writeStructured(w io.Writer, format OutputFormat, data interface{}) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case FormatYAML:
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("format %q is not structured", format)
}

// table writes aligned columns.
type table struct {
	w *tabwriter.Writer
}

func newTable(w io.Writer, columns ...string) *table {
	t := &table{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(columns...)
	return t
}

func (t *table) row(values ...string) {
	fmt.Fprintln(t.w, strings.Join(values, "\t"))
}

func (t *table) flush() error {
	return t.w.Flush()
}

// confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or yes declines.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt+" [y/N]: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

type styles struct {
	title  lipgloss.Style
	kind   lipgloss.Style
	id     lipgloss.Style
	branch lipgloss.Style
	muted  lipgloss.Style
}

// newStyles returns colored styles bound to w, or plain ones when color is off.
func newStyles(w io.Writer, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{title: plain, kind: plain, id: plain, branch: plain, muted: plain}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		kind:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		id:     r.NewStyle().Foreground(lipgloss.Color("#626262")),
		branch: r.NewStyle().Foreground(lipgloss.Color("#3C3C3C")),
		muted:  r.NewStyle().Italic(true).Foreground(lipgloss.Color("#A49FA5")),
	}
}

// renderTree draws nodes with box-drawing connectors, one node per line.
func renderTree[T any](nodes []tree.Node[T], st styles, label func(tree.Node[T]) string) string {
	var b strings.Builder
	var draw func(nodes []tree.Node[T], prefix string)
	draw = func(nodes []tree.Node[T], prefix string) {
		for i, n := range nodes {
			connector, indent := "├── ", "│   "
			if i == len(nodes)-1 {
				connector, indent = "└── ", "    "
			}
			b.WriteString(st.branch.Render(prefix+connector) + label(n) + "\n")
			draw(n.Children, prefix+indent)
		}
	}
	draw(nodes, "")
	return b.String()
}

func componentLabel(st styles) func(models.ComponentNode) string {
	return func(n models.ComponentNode) string {
		line := st.kind.Render(string(n.Content.Kind)) + " " + st.id.Render(n.ID)
		if s := describe(n.Content); s != "" {
			line += "  " + s
		}
		return line
	}
}

func layoutLabel(st styles) func(models.LayoutNode) string {
	return func(n models.LayoutNode) string {
		line := st.kind.Render(n.Content.Type)
		if n.Content.Name != "" {
			line += " " + fmt.Sprintf("%q", n.Content.Name)
		}
		if n.Content.Component != "" {
			line += " " + st.id.Render("-> "+n.Content.Component)
		}
		return line
	}
}

// describe summarizes a component's properties on one line.
func describe(c models.Component) string {
	switch p := c.Props.(type) {
	case models.FieldGroupProps:
		if p.Title == "" {
			return "(" + p.Direction + ")"
		}
		return fmt.Sprintf("%q (%s)", p.Title, p.Direction)
	case models.LabelProps:
		return fmt.Sprintf("%q %dpx", p.Content, p.FontSize)
	case models.ButtonProps:
		s := fmt.Sprintf("%q [%s]", p.Content, p.Variant)
		if p.Disabled {
			s += " disabled"
		}
		return s
	case models.SwitchProps:
		state := "off"
		if p.Checked {
			state = "on"
		}
		return fmt.Sprintf("%q %s", p.Label, state)
	case models.TextInputProps:
		s := fmt.Sprintf("%q", p.Label)
		if p.Required {
			s += " required"
		}
		return s
	}
	return ""
}

// maxColumnWidth caps free-text columns in tables.
const maxColumnWidth = 40

func cell(s string) string {
	return truncate.StringWithTail(s, maxColumnWidth, "…")
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return cell(strings.Join(tags, ","))
}
