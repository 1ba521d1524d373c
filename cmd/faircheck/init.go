package main

import (
	"fmt"

	"github.com/fairdata/faircheck/internal/projectconfig"
	"github.com/fairdata/faircheck/internal/wizard"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var (
		path        string
		force       bool
		useDefaults bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .faircheck.yaml project configuration",
		Long: `Create a .faircheck.yaml project configuration.

The wizard asks for the tests file, failure policy, concurrency and timeout.
Use --defaults to write the built-in defaults without prompting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := projectconfig.New()
			if !useDefaults {
				var err error
				cfg, err = wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}

			if err := projectconfig.Save(path, cfg, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", projectconfig.FileName, "Where to write the configuration")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	cmd.Flags().BoolVar(&useDefaults, "defaults", false, "Write the defaults without prompting")

	return cmd
}
