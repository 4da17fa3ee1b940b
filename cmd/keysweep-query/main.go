package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"keysweep/internal/database"
	"keysweep/internal/exitcodes"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", "/var/lib/keysweep/sweeps.db", "Path to sweep database")
	recent := flag.Int("recent", 0, "Show N most recent sweep outcomes")
	stats := flag.Bool("stats", false, "Show sweep statistics")
	action := flag.String("action", "", "Filter by action (DELETE, DRY_RUN, SKIP, ERROR)")
	target := flag.String("target", "", "Filter by target filename")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest deleted files")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	// Open database
	db, err := database.NewSweepDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	// Handle different query modes
	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *target != "":
		showByTarget(db, *target, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  keysweep-query --recent 10                # Show 10 most recent outcomes")
		fmt.Println("  keysweep-query --stats                    # Show sweep statistics")
		fmt.Println("  keysweep-query --action DELETE            # Show only deletions")
		fmt.Println("  keysweep-query --target proving_f10.key   # Show outcomes for one target")
		fmt.Println("  keysweep-query --path '/build/%'          # Show outcomes under /build")
		fmt.Println("  keysweep-query --largest 10               # Show 10 largest deleted files")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.SweepDB, days int, jsonOutput bool) {
	stats, err := db.GetSweepStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Sweep Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Total Deletions:  %d\n", stats.TotalDeletions)
	fmt.Printf("Total Skipped:    %d\n", stats.TotalSkipped)
	fmt.Printf("Total Errors:     %d\n", stats.TotalErrors)
	fmt.Printf("Space Freed:      %s\n\n", formatBytes(stats.TotalSpaceFreed))

	if len(stats.ByTarget) > 0 {
		fmt.Println("By Target:")
		for target, count := range stats.ByTarget {
			fmt.Printf("  %-25s %d\n", target, count)
		}
		fmt.Println()
	}

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-25s %d\n", action, count)
		}
	}
}

func showRecent(db *database.SweepDB, limit int, jsonOutput bool) {
	records, err := db.GetRecentDeletions(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent outcomes: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	printRecords(records)
}

func showByAction(db *database.SweepDB, action string, jsonOutput bool) {
	records, err := db.GetDeletionsByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Records with action: %s\n\n", action)
	printRecords(records)
}

func showByTarget(db *database.SweepDB, target string, jsonOutput bool) {
	records, err := db.GetDeletionsByTarget(target)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by target: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Outcomes for target: %s\n\n", target)
	printRecords(records)
}

func showByPath(db *database.SweepDB, pathPattern string, jsonOutput bool) {
	records, err := db.GetDeletionsByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Outcomes matching path pattern: %s\n\n", pathPattern)
	printRecords(records)
}

func showLargest(db *database.SweepDB, limit int, jsonOutput bool) {
	records, err := db.GetLargestDeletions(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get largest deletions: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Largest %d deleted files:\n\n", limit)
	printRecords(records)
}

func printRecords(records []database.DeletionRecord) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tTarget\tSize\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t------\t----\t----")

	for _, r := range records {
		timestamp := r.Timestamp.Format("2006-01-02 15:04:05")
		size := formatBytes(r.Size)
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, timestamp, r.Action, r.Target, size, r.Path)
	}
	_ = w.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
