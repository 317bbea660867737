package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"dashboard-service/catalog"
	"dashboard-service/models"
	"dashboard-service/store"
)

func newWidgetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "widgets",
		Aliases: []string{"widget", "w"},
		Short:   "Inspect and delete saved widgets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newWidgetsListCmd(opts))
	cmd.AddCommand(newWidgetsShowCmd(opts))
	cmd.AddCommand(newWidgetsDeleteCmd(opts))
	cmd.AddCommand(newWidgetsCopyCmd(opts))

	return cmd
}

func newWidgetsListCmd(opts *rootOptions) *cobra.Command {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved widgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(opts.output)
			if err != nil {
				return err
			}
			q, err := lo.query()
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer e.close()

			all, err := store.NewWidgets(e.slots, e.logger).List(cmd.Context())
			if err != nil {
				return err
			}
			items := catalog.Apply(all, q)

			out := cmd.OutOrStdout()
			if format != FormatText {
				return writeStructured(out, format, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No widgets found.")
				return nil
			}
			t := newTable(out, "ID", "NAME", "TAGS", "COMPONENTS", "UPDATED")
			for _, w := range items {
				t.row(w.ID, cell(w.Name), joinTags(w.Tags), strconv.Itoa(w.ComponentsCount),
					w.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return t.flush()
		},
	}

	lo.bind(cmd, false)
	return cmd
}

func newWidgetsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a widget's component tree",
		Long: `Print a widget's component tree.

Examples:
  dashboardctl widgets show 3f1c...
  dashboardctl widgets show 3f1c... -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(opts.output)
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer e.close()

			w, err := store.NewWidgets(e.slots, e.logger).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format != FormatText {
				return writeStructured(out, format, w)
			}
			st := newStyles(out, opts.noColor)
			fmt.Fprintf(out, "%s %s\n", st.title.Render(w.Name), st.id.Render(w.ID))
			fmt.Fprintf(out, "tags: %s  components: %d\n", joinTags(w.Tags), w.ComponentsCount)
			if len(w.Components) == 0 {
				fmt.Fprintln(out, st.muted.Render("(no components)"))
				return nil
			}
			fmt.Fprint(out, renderTree(w.Components, st, componentLabel(st)))
			return nil
		},
	}
}

func newWidgetsDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved widget",
		Long: `Delete a saved widget.

Dashboards hosting the widget are listed but not changed. Asks for
confirmation while the ask-before-delete-widget preference is on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			widgets := store.NewWidgets(e.slots, e.logger)
			w, err := widgets.Get(ctx, args[0])
			if err != nil {
				return err
			}

			dashboards, err := store.NewDashboards(e.slots, e.logger).List(ctx)
			if err != nil {
				return err
			}
			var hosts []string
			for _, d := range dashboards {
				if refs, err := models.WidgetRefs(d.Layout); err == nil && slices.Contains(refs, w.ID) {
					hosts = append(hosts, d.Name)
				}
			}
			out := cmd.OutOrStdout()
			if len(hosts) > 0 {
				fmt.Fprintf(out, "Widget %q is used by: %s\n", w.Name, strings.Join(hosts, ", "))
			}

			ok, err := shouldDelete(cmd, e, store.PrefAskBeforeDeleteWidget, yes,
				fmt.Sprintf("Delete widget %q?", w.Name))
			if err != nil || !ok {
				return err
			}
			if err := widgets.Delete(ctx, w.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted widget %s (%s)\n", w.Name, w.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func newWidgetsCopyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "copy <id>",
		Aliases: []string{"clip"},
		Short:   "Copy a widget's JSON to the system clipboard",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer e.close()

			w, err := store.NewWidgets(e.slots, e.logger).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(w, "", "  ")
			if err != nil {
				return err
			}
			if err := clipboard.WriteAll(string(data)); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied widget %s to clipboard (%d bytes)\n", w.Name, len(data))
			return nil
		},
	}
}
