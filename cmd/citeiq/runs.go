package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/luiscosio/CiteIQ/internal/store"
)

var runsDB string

func init() {
	runsCmd.Flags().StringVar(&runsDB, "db", filepath.Join("output", "records.db"), "Records database written by citeiq process")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List pipeline runs recorded in the records database",
	Long: `List pipeline runs recorded in the records database, newest first.

Examples:
  citeiq runs
  citeiq runs --db review/records.db`,
	RunE: runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(runsDB); err != nil {
		exitWithError(ExitDataError, "records database %s not found (run citeiq process first)", runsDB)
	}

	db, err := store.Open(runsDB)
	if err != nil {
		exitWithError(ExitError, "opening %s: %v", runsDB, err)
	}
	defer db.Close()

	runs, err := db.Runs()
	if err != nil {
		exitWithError(ExitError, "listing runs: %v", err)
	}

	if humanOutput {
		if len(runs) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}
		rows := make([]table.Row, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, table.Row{
				run.ID,
				run.StartedAt.Local().Format("2006-01-02 15:04"),
				run.SortMode,
				run.Records,
				strings.Join(run.InputFiles, ", "),
			})
		}
		fmt.Println(renderTable(table.Row{"Run", "Started", "Sort", "Records", "Inputs"}, rows, 4))
	} else {
		if runs == nil {
			runs = []store.Run{}
		}
		outputJSON(runs)
	}

	return nil
}
