package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and teach learned category rules",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "export",
			Short: "Print all learned rules as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rules, err := c.app.Learning.Rules(cmd.Context())
				if err != nil {
					return err
				}

				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)

				if err := enc.Encode(rules); err != nil {
					return err
				}

				return enc.Close()
			},
		},
		&cobra.Command{
			Use:   "learn <usage> <category>",
			Short: "Record that a usage text belongs to a category",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.Learning.Learn(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "suggest <usage>",
			Short: "Show the category a usage text would be filed under",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				category, ok, err := c.app.Learning.Suggest(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "no rule matches")
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), category)

				return nil
			},
		},
	)

	return cmd
}
