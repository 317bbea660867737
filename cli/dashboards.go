package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dashboard-service/catalog"
	"dashboard-service/models"
	"dashboard-service/store"
)

type listOptions struct {
	search     string
	tags       []string
	visibility string
	sort       string
	desc       bool
}

func (o *listOptions) bind(cmd *cobra.Command, withVisibility bool) {
	cmd.Flags().StringVarP(&o.search, "search", "s", "", "Match name or tags (case-insensitive substring)")
	cmd.Flags().StringSliceVarP(&o.tags, "tag", "t", nil, "Only items carrying every given tag")
	cmd.Flags().StringVar(&o.sort, "sort", "", "Sort by updated, created, name or components")
	cmd.Flags().BoolVar(&o.desc, "desc", false, "Reverse the sort order")
	if withVisibility {
		cmd.Flags().StringVar(&o.visibility, "visibility", "all", "all, public or private")
	}
}

func (o *listOptions) query() (catalog.Query, error) {
	vis, err := catalog.ParseVisibility(o.visibility)
	if err != nil {
		return catalog.Query{}, err
	}
	sortBy, err := catalog.ParseSort(o.sort)
	if err != nil {
		return catalog.Query{}, err
	}
	return catalog.Query{Search: o.search, Tags: o.tags, Visibility: vis, SortBy: sortBy, Desc: o.desc}, nil
}

func newDashboardsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboards",
		Aliases: []string{"dashboard", "db"},
		Short:   "Inspect and delete saved dashboards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newDashboardsListCmd(opts))
	cmd.AddCommand(newDashboardsShowCmd(opts))
	cmd.AddCommand(newDashboardsDeleteCmd(opts))

	return cmd
}

func newDashboardsListCmd(opts *rootOptions) *cobra.Command {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved dashboards",
		Long: `List saved dashboards, newest first unless --sort is given.

Examples:
  dashboardctl dashboards list
  dashboardctl dashboards list --visibility public --sort name
  dashboardctl dashboards list --tag sales -o json`,
		Args: cobra.NoArgs,
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

			all, err := store.NewDashboards(e.slots, e.logger).List(cmd.Context())
			if err != nil {
				return err
			}
			items := catalog.Apply(all, q)

			out := cmd.OutOrStdout()
			if format != FormatText {
				return writeStructured(out, format, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No dashboards found.")
				return nil
			}
			t := newTable(out, "ID", "NAME", "TAGS", "PUBLIC", "COMPONENTS", "UPDATED")
			for _, d := range items {
				t.row(d.ID, cell(d.Name), joinTags(d.Tags), strconv.FormatBool(d.Public),
					strconv.Itoa(d.ComponentsCount), d.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return t.flush()
		},
	}

	lo.bind(cmd, true)
	return cmd
}

func newDashboardsShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a dashboard and its layout tree",
		Args:  cobra.ExactArgs(1),
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

			d, err := store.NewDashboards(e.slots, e.logger).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format != FormatText {
				return writeStructured(out, format, d)
			}
			st := newStyles(out, opts.noColor)
			fmt.Fprintf(out, "%s %s\n", st.title.Render(d.Name), st.id.Render(d.ID))
			fmt.Fprintf(out, "tags: %s  public: %t  components: %d\n", joinTags(d.Tags), d.Public, d.ComponentsCount)

			nodes, err := models.ParseLayout(d.Layout)
			if err != nil {
				fmt.Fprintln(out, st.muted.Render("layout cannot be parsed: "+err.Error()))
				return nil
			}
			fmt.Fprint(out, renderTree(nodes, st, layoutLabel(st)))
			return nil
		},
	}
}

func newDashboardsDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved dashboard",
		Long: `Delete a saved dashboard.

Asks for confirmation while the ask-before-delete-dashboard preference is on.
Pass --yes to skip the question.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			dashboards := store.NewDashboards(e.slots, e.logger)
			d, err := dashboards.Get(ctx, args[0])
			if err != nil {
				return err
			}

			ok, err := shouldDelete(cmd, e, store.PrefAskBeforeDeleteDashboard, yes,
				fmt.Sprintf("Delete dashboard %q?", d.Name))
			if err != nil || !ok {
				return err
			}
			if err := dashboards.Delete(ctx, d.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted dashboard %s (%s)\n", d.Name, d.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

// shouldDelete asks for confirmation when the preference pref is on and the
// user did not pass --yes.
func shouldDelete(cmd *cobra.Command, e *env, pref string, yes bool, prompt string) (bool, error) {
	if yes {
		return true, nil
	}
	def, _ := store.PreferenceDefault(pref)
	ask, err := store.NewPreferences(e.slots, e.logger).Bool(cmd.Context(), pref, def)
	if err != nil {
		return false, err
	}
	if !ask {
		return true, nil
	}
	ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
	}
	return ok, nil
}
