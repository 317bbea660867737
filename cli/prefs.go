package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dashboard-service/store"
)

func newPrefsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prefs",
		Aliases: []string{"preferences"},
		Short:   "Read and change preference flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newPrefsGetCmd(opts))
	cmd.AddCommand(newPrefsSetCmd(opts))

	return cmd
}

func checkPreference(name string) error {
	if _, ok := store.PreferenceDefault(name); !ok {
		return fmt.Errorf("unknown preference %q (known: %v)", name, store.PreferenceNames())
	}
	return nil
}

func newPrefsGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [name]",
		Short: "Print one or all preference flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := store.PreferenceNames()
			if len(args) == 1 {
				if err := checkPreference(args[0]); err != nil {
					return err
				}
				names = args
			}

			e, err := openEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer e.close()

			prefs := store.NewPreferences(e.slots, e.logger)
			t := newTable(cmd.OutOrStdout(), "NAME", "VALUE")
			for _, name := range names {
				def, _ := store.PreferenceDefault(name)
				v, err := prefs.Bool(cmd.Context(), name, def)
				if err != nil {
					return err
				}
				t.row(name, strconv.FormatBool(v))
			}
			return t.flush()
		},
	}
}

func newPrefsSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <true|false>",
		Short: "Change a preference flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPreference(args[0]); err != nil {
				return err
			}
			v, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid value %q: want true or false", args[1])
			}

			e, err := openEnv(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := store.NewPreferences(e.slots, e.logger).SetBool(cmd.Context(), args[0], v); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n", args[0], v)
			return nil
		},
	}
}
