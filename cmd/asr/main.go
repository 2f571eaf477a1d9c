// Command asr loads a JSON schedule description into an SQLite database
// stored next to the input file, audits it and prints the schedule and its
// metrics to stdout.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/arnavshah/shift-audit-go/pkg/audit"
	"github.com/arnavshah/shift-audit-go/pkg/database"
	"github.com/arnavshah/shift-audit-go/pkg/ingest"
	"github.com/arnavshah/shift-audit-go/pkg/report"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if it exists
	for _, p := range []string{".env", "../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <json_file_path>\n", os.Args[0])
		os.Exit(2)
	}
	inputPath := os.Args[1]

	input, err := ingest.LoadFile(inputPath)
	if err != nil {
		log.Fatalf("could not load input: %v", err)
	}

	dbPath := ingest.DBPathFor(inputPath)
	db, err := database.OpenFile(dbPath)
	if err != nil {
		log.Fatalf("could not open database %s: %v", dbPath, err)
	}

	if err := ingest.Store(db, input); err != nil {
		log.Fatalf("could not store schedule: %v", err)
	}

	result, err := audit.Run(db)
	if err != nil {
		log.Fatalf("could not audit schedule: %v", err)
	}

	// a rendering failure must not discard the computed results
	if err := report.NewRenderer(db, os.Stdout).Draw(result); err != nil {
		fmt.Printf("can't draw schedule representation, error %v\n", err)
	}
}
