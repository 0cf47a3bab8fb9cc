package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devinalusiana15/KMS-OOP/internal/engine"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Upload and index documents",
	Long:  `Indexes each file and writes its ontology, the same way an upload through the API does.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	results := make([]engine.IngestResult, 0, len(args))
	failed := 0
	for _, path := range args {
		content, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}

		result, err := eng.Ingest(cmd.Context(), filepath.Base(path), content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		results = append(results, result)

		if !jsonOutput {
			fmt.Printf("%s: document %d, %d sentences, %d postings, %d lemma postings",
				result.Document.Name, result.Document.ID, result.Sentences, result.Postings, result.LemmaPostings)
			if result.OntologyPath != "" {
				fmt.Printf(", ontology %s (%d triples)", result.OntologyPath, result.Triples)
			}
			fmt.Println()
		}
	}

	if jsonOutput {
		if err := printJSON(results); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
