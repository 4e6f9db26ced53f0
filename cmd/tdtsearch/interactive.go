package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newInteractiveCommand() *cobra.Command {
	var topN int
	var corpusPath string

	c := &cobra.Command{
		Use:   "interactive <index-file>",
		Short: "Open a search REPL over a saved index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(args[0], topN, corpusPath)
		},
	}

	c.Flags().IntVar(&topN, "top", 10, "number of results to return")
	c.Flags().StringVar(&corpusPath, "corpus", "", "corpus path, enables snippet generation")
	return c
}

func runInteractive(indexPath string, topN int, corpusPath string) error {
	idx, err := loadIndex(indexPath)
	if err != nil {
		return err
	}

	retriever, err := newRetrieverFor(idx, corpusPath)
	if err != nil {
		return err
	}

	totalDocs, totalTerms := idx.CorpusStats()
	fmt.Printf("tdtsearch interactive: %d documents, %d terms loaded\n", totalDocs, totalTerms)
	fmt.Println(`enter a query; "quoted" text is a phrase; type exit or quit to leave`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nquery > ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			return nil
		}

		results := retriever.Search(query, topN)
		printResults(results)
	}
}
