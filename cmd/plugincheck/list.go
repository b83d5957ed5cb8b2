package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/plugincheck/plugincheck/application/operations"
	"github.com/plugincheck/plugincheck/application/validation"
	"github.com/plugincheck/plugincheck/domain/entities"
	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
	"github.com/plugincheck/plugincheck/infrastructure/openapi"
)

type listFlags struct {
	domains     []string
	specs       []string
	noWarn      bool
	concurrency int
	json        bool
}

// listReport is the --json form of one input's outcome.
type listReport struct {
	Input     string                     `json:"input"`
	LoadError *entities.ErrorDetail      `json:"load_error,omitempty"`
	Result    *entities.OperationsResult `json:"result,omitempty"`
}

// listInput is one row of output: either a manifest domain or a bare spec URL.
type listInput struct {
	label   string
	req     operations.ListRequest
	loadErr error
	result  int
}

func newListCmd(a *app) *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the operations usable from plugin API specs",
		Long: `Lists the GET and POST operations that need no authentication and take
only path or query parameters. Inputs come from --manifest-domain (the spec is
read from the domain's manifest) and --spec (a spec URL or file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(flags.domains) == 0 && len(flags.specs) == 0 {
				return cmd.Usage()
			}
			return a.runList(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&flags.domains, "manifest-domain", nil, "domain serving /.well-known/ai-plugin.json (repeatable)")
	f.StringArrayVar(&flags.specs, "spec", nil, "OpenAPI spec URL or path (repeatable)")
	f.BoolVar(&flags.noWarn, "no-warn", false, "do not log spec warnings")
	f.IntVar(&flags.concurrency, "concurrency", 4, "maximum specs processed at once")
	f.BoolVar(&flags.json, "json", false, "print results as JSON")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, flags *listFlags) error {
	ctx := cmd.Context()
	ld := a.loader()

	inputs := make([]listInput, 0, len(flags.domains)+len(flags.specs))
	for _, d := range flags.domains {
		domain := normalizeDomain(d)
		in := listInput{label: domain}
		m, err := ld.Load(ctx, domain)
		in.loadErr = err
		in.req = operations.ListRequest{Manifest: m, ShouldWarn: !flags.noWarn}
		inputs = append(inputs, in)
	}
	for _, s := range flags.specs {
		inputs = append(inputs, listInput{
			label: s,
			req:   operations.ListRequest{SpecURL: s, ShouldWarn: !flags.noWarn},
		})
	}

	reqs := make([]operations.ListRequest, 0, len(inputs))
	for i := range inputs {
		if inputs[i].loadErr == nil {
			inputs[i].result = len(reqs)
			reqs = append(reqs, inputs[i].req)
		}
	}

	factory := openapi.Factory(
		openapi.WithHTTPClient(a.client),
		openapi.WithMaxAttempts(a.cfg.Retry.MaxAttempts),
		openapi.WithRetryOptions(a.retryOpts...),
		openapi.WithLogger(a.logger),
	)
	lister := operations.NewLister(factory, validation.NewManifestValidator(), a.logger)
	results := lister.ListAll(ctx, reqs, flags.concurrency)

	failed := false
	reports := make([]listReport, 0, len(inputs))
	for _, in := range inputs {
		rep := listReport{Input: in.label}
		if in.loadErr != nil {
			rep.LoadError = domainerrors.ToErrorDetail(in.loadErr)
		} else {
			res := results[in.result]
			rep.Result = &res
		}
		if rep.LoadError != nil || !rep.Result.OK() {
			failed = true
		}
		reports = append(reports, rep)
	}

	if flags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			printReport(cmd, rep)
		}
	}

	if failed {
		return errFailed
	}
	return nil
}

func printReport(cmd *cobra.Command, rep listReport) {
	switch {
	case rep.LoadError != nil:
		printf(cmd, "%s: failed to load manifest: %s\n", rep.Input, rep.LoadError.Message)
	case !rep.Result.OK():
		printErrors(cmd, rep.Input, rep.Result.Errors)
	default:
		printf(cmd, "%s: %d operation(s)\n", rep.Input, len(rep.Result.Operations))
		for _, op := range rep.Result.Operations {
			printf(cmd, "  %s\n", op)
		}
	}
}
