package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/datetime"
	"github.com/scalesql/groovyutil/fileutil"
	"github.com/scalesql/groovyutil/property"
	"github.com/spf13/cobra"
)

func newPropCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prop",
		Short: "Read the property file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>...",
		Short: "Print property values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := property.Default()
			for _, key := range args {
				v, ok := store.Lookup(key)
				if !ok {
					return errors.Errorf("%s: not set in %q", key, store.Name())
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "Print the property keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printLines(cmd.OutOrStdout(), property.Default().Keys())
			return nil
		},
	})
	return cmd
}

func newTimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Format dates and times with yyyy-MM-dd HH:mm:ss patterns",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "format <value> <from-pattern> <to-pattern>",
		Short: "Parse a value with one pattern and print it with another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := datetime.Parse(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), datetime.Format(t, args[2]))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "now [pattern]",
		Short: "Print the current time (default yyyyMMdd-HHmmss)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := datetime.DateTimePattern
			if len(args) == 1 {
				pattern = args[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), fileutil.FormattedNow(pattern))
			return nil
		},
	})
	return cmd
}
