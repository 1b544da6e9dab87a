package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/buildcheck/internal/cli/config"
	"github.com/leapstack-labs/buildcheck/internal/cli/output"
	"github.com/leapstack-labs/buildcheck/internal/requirements"
	"github.com/leapstack-labs/buildcheck/pkg/reconcile"
	"github.com/spf13/cobra"
)

// CheckReport is the JSON payload of the check command.
type CheckReport struct {
	Models       []*reconcile.CheckResult `json:"models"`
	Requirements []*requirements.Result   `json:"requirements,omitempty"`
	Summary      CheckSummary             `json:"summary"`
}

// CheckSummary aggregates pass/fail counts over all checked models.
type CheckSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate manifest columns against compiled SQL",
		Long: `Parse each model's compiled SQL file and reconcile its outermost
projection against the columns declared in the manifest.

With --check-tables, table references in the SQL are also validated
against the models and sources the manifest knows about, after applying
any configured database and schema substitutions.

With --check-requirements, model metadata is additionally checked
against the governance rules in the requirements config.

The command exits non-zero when any model fails validation.`,
		Example: `  # Reconcile columns for every model
  buildcheck check -m target/manifest.json -c target/compiled

  # Also validate table references, mapping prod databases to dev
  buildcheck check --check-tables --database-substitution prod_db=dev_db

  # Enforce governance requirements
  buildcheck check --check-requirements --requirements-config requirements.yaml

  # Only check models touched by a change set
  buildcheck check --restrict-to-files changed_files.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}

	return cmd
}

func runCheck(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	m, err := loadManifest(cfg)
	if err != nil {
		return err
	}

	parser, err := reconcile.NewStdParser(cfg.Dialect)
	if err != nil {
		return err
	}

	subs, err := buildSubstitutions(cfg)
	if err != nil {
		return err
	}

	rec := reconcile.NewReconciler(m, reconcile.Options{
		CompiledRoot: cfg.CompiledSQL,
		Parser:       parser,
		CheckTables:  cfg.CheckTables,
		Subs:         subs,
		Logger:       cmdCtx.Logger,
	})
	results := rec.CheckAll()

	var reqResults []*requirements.Result
	if cfg.CheckRequirements {
		reqCfg, err := requirements.LoadConfig(cfg.RequirementsConfig)
		if err != nil {
			return err
		}
		checker, err := requirements.NewChecker(m, reqCfg)
		if err != nil {
			return err
		}
		reqResults = checker.CheckAll()
	}

	report := buildReport(results, reqResults)

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(report); err != nil {
			return err
		}
	} else {
		renderCheckText(r, cfg, report)
	}

	if report.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d models failed validation", report.Summary.Failed, report.Summary.Total)
	}
	return nil
}

// buildSubstitutions parses the configured substitution pairs.
func buildSubstitutions(cfg *config.Config) (reconcile.Substitutions, error) {
	catalog, err := reconcile.ParseSubstitutionPairs(cfg.DatabaseSubstitutions)
	if err != nil {
		return reconcile.Substitutions{}, err
	}
	schema, err := reconcile.ParseSubstitutionPairs(cfg.SchemaSubstitutions)
	if err != nil {
		return reconcile.Substitutions{}, err
	}
	return reconcile.Substitutions{Catalog: catalog, Schema: schema}, nil
}

// buildReport combines reconciliation and requirements results. A model
// passes only when its reconciliation passed and, if requirements were
// checked, its requirements held.
func buildReport(results []*reconcile.CheckResult, reqResults []*requirements.Result) *CheckReport {
	reqByID := make(map[string]*requirements.Result, len(reqResults))
	for _, rr := range reqResults {
		reqByID[rr.NodeID] = rr
	}

	report := &CheckReport{
		Models:       results,
		Requirements: reqResults,
	}

	for _, res := range results {
		report.Summary.Total++
		passed := res.Passed()
		if rr, ok := reqByID[res.NodeID]; ok && !rr.RequirementsValid {
			passed = false
		}
		if passed {
			report.Summary.Passed++
		} else {
			report.Summary.Failed++
		}
	}

	return report
}

// renderCheckText prints the per-model outcome and a summary.
func renderCheckText(r *output.Renderer, cfg *config.Config, report *CheckReport) {
	st := r.Styles()

	reqByID := make(map[string]*requirements.Result, len(report.Requirements))
	for _, rr := range report.Requirements {
		reqByID[rr.NodeID] = rr
	}

	r.Header(1, fmt.Sprintf("Checking %d models", report.Summary.Total))

	for _, res := range report.Models {
		rr := reqByID[res.NodeID]
		failed := !res.Passed() || (rr != nil && !rr.RequirementsValid)

		if failed {
			r.Println(st.Error.Render("✗") + " " + res.NodeID)
		} else {
			r.Success(res.NodeID)
		}

		for _, e := range res.Errors {
			r.Muted("    " + e)
		}
		if res.SQLParsed && !res.ColumnsMatch {
			if len(res.MissingInSQL) > 0 {
				r.Muted("    missing in SQL: " + strings.Join(res.MissingInSQL, ", "))
			}
			if len(res.ExtraInSQL) > 0 {
				r.Muted("    extra in SQL: " + strings.Join(res.ExtraInSQL, ", "))
			}
		}
		if !res.ReferencesValid {
			r.Muted("    invalid references: " + strings.Join(res.InvalidReferences, ", "))
		}

		if rr != nil {
			for _, e := range rr.Errors {
				r.Muted("    " + e)
			}
			for _, w := range rr.Warnings {
				r.Warning("    " + w)
			}
		}

		if cfg.Verbose && res.SQLFileExists {
			r.Muted("    compiled file: " + res.SQLFilePath)
		}
	}

	r.Println()
	if report.Summary.Failed == 0 {
		r.Success(fmt.Sprintf("%d models passed", report.Summary.Passed))
	} else {
		r.Printf("%s %d passed, %d failed\n",
			st.Error.Render("✗"), report.Summary.Passed, report.Summary.Failed)
	}
}
