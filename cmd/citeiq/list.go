package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/luiscosio/CiteIQ/internal/store"
)

var (
	listDB       string
	listRun      string
	listFlag     string
	listDOI      string
	listMinScore float64
	listYearFrom int
	listYearTo   int
	listSort     string
	listLimit    int
)

func init() {
	listCmd.Flags().StringVar(&listDB, "db", filepath.Join("output", "records.db"), "Records database written by citeiq process")
	listCmd.Flags().StringVar(&listRun, "run", "", "Run ID to list (default latest)")
	listCmd.Flags().StringVar(&listFlag, "flag", "", "Only records carrying this flag (e.g. retracted)")
	listCmd.Flags().StringVar(&listDOI, "doi", "", "Only records with this DOI (any prefix form)")
	listCmd.Flags().Float64Var(&listMinScore, "min-score", 0, "Minimum total score")
	listCmd.Flags().IntVar(&listYearFrom, "year-from", 0, "Earliest publication year")
	listCmd.Flags().IntVar(&listYearTo, "year-to", 0, "Latest publication year")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Order by score, year, or author (default score)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results to return (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scored records from a pipeline run",
	Long: `List scored records from the records database.

Without --run the latest run is listed.

Examples:
  citeiq list
  citeiq list --flag retracted
  citeiq list --min-score 50 --sort year --limit 20
  citeiq list --db review/records.db --year-from 2020`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(listDB); err != nil {
		exitWithError(ExitDataError, "records database %s not found (run citeiq process first)", listDB)
	}

	db, err := store.Open(listDB)
	if err != nil {
		exitWithError(ExitError, "opening %s: %v", listDB, err)
	}
	defer db.Close()

	entries, err := db.List(store.ListOptions{
		RunID:    listRun,
		Flag:     listFlag,
		DOI:      listDOI,
		MinScore: listMinScore,
		YearFrom: listYearFrom,
		YearTo:   listYearTo,
		OrderBy:  listSort,
		Limit:    listLimit,
	})
	if err != nil {
		exitWithError(ExitError, "listing records: %v", err)
	}

	if humanOutput {
		printEntriesHuman(entries)
	} else {
		if entries == nil {
			entries = []store.Entry{}
		}
		outputJSON(entries)
	}

	return nil
}

func printEntriesHuman(entries []store.Entry) {
	if len(entries) == 0 {
		fmt.Println("No records found")
		return
	}

	rows := make([]table.Row, 0, len(entries))
	for _, entry := range entries {
		ref := entry.Record.Reference

		title := ref.Title
		if title == "" {
			title = ref.Raw
		}
		year := ""
		if ref.Year > 0 {
			year = strconv.Itoa(ref.Year)
		}
		var authors []string
		for _, author := range ref.Authors {
			authors = append(authors, author.Name)
		}

		rows = append(rows, table.Row{
			entry.Position + 1,
			formatScore(entry.Record.Score.Total()),
			year,
			truncateString(formatAuthorsShort(authors, 2), 30),
			truncateString(title, ListTitleMaxLen),
			formatFlags(entry.Record.Flags),
		})
	}

	fmt.Println(renderTable(table.Row{"#", "Score", "Year", "Authors", "Title", "Flags"}, rows, 1, 2, 3))
	fmt.Printf("%d records (run %s)\n", len(entries), entries[0].RunID)
}
