package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/recaudo/evidence-cli/internal/evidence"
	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/table"
)

var (
	validateSource       string
	validateNewRecords   string
	validateSMS          string
	validateConsolidated string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check input tables without writing anything",
	Long:  "Loads each provided workbook, normalizes its headers, and reports row counts and missing required columns.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("validate"); err != nil {
			return err
		}

		mapping, err := loadMapping()
		if err != nil {
			return err
		}

		checks := []fileCheck{
			{path: validateSource, label: "source", required: evidence.SourceColumns},
			{path: validateNewRecords, label: "new-records", required: evidence.NewRecordsColumns},
			{path: validateSMS, label: "sms", required: evidence.SMSColumns},
			{path: validateConsolidated, label: "consolidated", required: evidence.ConsolidatedColumns, trimOnly: true},
		}

		reports, err := checkFiles(checks, mapping)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			return eris.New("validate: no input files provided")
		}

		formatValidation(os.Stdout, reports)

		problems := 0
		for _, rep := range reports {
			if len(rep.Missing) > 0 {
				problems++
			}
		}
		if problems > 0 {
			return eris.Errorf("validate: %d file(s) missing required columns", problems)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSource, "source", "", "primary customer table")
	validateCmd.Flags().StringVar(&validateNewRecords, "new-records", "", "channel activity table")
	validateCmd.Flags().StringVar(&validateSMS, "sms", "", "SMS delivery table")
	validateCmd.Flags().StringVar(&validateConsolidated, "consolidated", "", "consolidated call-recordings index")
	rootCmd.AddCommand(validateCmd)
}

// fileCheck names one input file and the columns it must have after
// normalization. trimOnly files keep their source headers.
type fileCheck struct {
	path     string
	label    string
	required []string
	trimOnly bool
}

// fileReport is the validation outcome for one file.
type fileReport struct {
	File    string
	Label   string
	Rows    int
	Missing []string
}

// checkFiles loads every provided file and reports its row count and missing
// required columns. Unreadable files abort with the read error.
func checkFiles(checks []fileCheck, mapping schema.Mapping) ([]fileReport, error) {
	var reports []fileReport
	for _, c := range checks {
		if c.path == "" {
			continue
		}

		t, err := table.ReadFile(c.path, table.Options{})
		if err != nil {
			return nil, err
		}
		if c.trimOnly {
			t = schema.TrimOnly(t)
		} else {
			t = schema.Normalize(t, mapping)
		}

		reports = append(reports, fileReport{
			File:    filepath.Base(c.path),
			Label:   c.label,
			Rows:    t.Len(),
			Missing: schema.MissingColumns(t, c.required),
		})
	}
	return reports, nil
}

// formatValidation writes a tabular per-file report to w.
func formatValidation(out io.Writer, reports []fileReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILE\tKIND\tROWS\tMISSING COLUMNS")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t---------------")

	for _, rep := range reports {
		missing := "-"
		if len(rep.Missing) > 0 {
			missing = strings.Join(rep.Missing, ", ")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", rep.File, rep.Label, rep.Rows, missing)
	}
	_ = w.Flush()
}
