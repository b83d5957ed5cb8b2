package main

import (
	"github.com/spf13/cobra"

	"github.com/plugincheck/plugincheck/application/schema"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of ai-plugin.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schema.ManifestSchema()
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", data)
			return nil
		},
	}
}
