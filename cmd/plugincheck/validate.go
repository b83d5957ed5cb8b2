package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plugincheck/plugincheck/application/validation"
	"github.com/plugincheck/plugincheck/domain/entities"
)

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <domain|file>",
		Short: "Check that a plugin manifest can be used without credentials",
		Long: `Loads the manifest from a local file, or from
<domain>/.well-known/ai-plugin.json when the argument is not a file, and
reports every problem found. Exits with status 1 if there is any.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, raw, err := a.readManifest(cmd, args[0])
			if err != nil {
				return err
			}

			var errs []entities.ValidationError
			if strict {
				sv, err := validation.NewSchemaValidator()
				if err != nil {
					return err
				}
				errs = append(errs, sv.Validate(raw)...)
			}
			errs = append(errs, validation.NewManifestValidator().Validate(m)...)

			if len(errs) == 0 {
				printf(cmd, "%s: manifest is valid\n", args[0])
				return nil
			}
			printErrors(cmd, args[0], errs)
			return errFailed
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "also check the manifest against its JSON schema")
	return cmd
}

// readManifest treats target as a path when it names an existing file and as
// a domain otherwise.
func (a *app) readManifest(cmd *cobra.Command, target string) (*entities.PluginManifest, []byte, error) {
	ld := a.loader()
	if fi, err := os.Stat(target); err == nil && !fi.IsDir() {
		return ld.LoadFile(target)
	}

	domain := normalizeDomain(target)
	raw, err := ld.Fetch(cmd.Context(), domain)
	if err != nil {
		return nil, nil, err
	}
	m, err := ld.Decode(raw, domain)
	return m, raw, err
}

// normalizeDomain defaults to https when no scheme is given.
func normalizeDomain(d string) string {
	if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") {
		return d
	}
	return "https://" + d
}

func printErrors(cmd *cobra.Command, subject string, errs []entities.ValidationError) {
	printf(cmd, "%s: %d problem(s)\n", subject, len(errs))
	for _, e := range errs {
		if e.Path != "" {
			printf(cmd, "  %s at %s: %s\n", e.Kind, e.Path, e.Message)
		} else {
			printf(cmd, "  %s: %s\n", e.Kind, e.Message)
		}
	}
}
