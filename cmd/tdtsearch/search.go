package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	blaze "github.com/YAN-MQ/tdtsearch"
)

func newSearchCommand() *cobra.Command {
	var topN int
	var corpusPath string

	c := &cobra.Command{
		Use:   "search <index-file> <query...>",
		Short: "Run a single query against a saved index",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args[1:], " ")
			return runSearch(args[0], query, topN, corpusPath)
		},
	}

	c.Flags().IntVar(&topN, "top", 10, "number of results to return")
	c.Flags().StringVar(&corpusPath, "corpus", "", "corpus path, enables snippet generation")
	return c
}

func runSearch(indexPath, query string, topN int, corpusPath string) error {
	idx, err := loadIndex(indexPath)
	if err != nil {
		return err
	}

	retriever, err := newRetrieverFor(idx, corpusPath)
	if err != nil {
		return err
	}

	results := retriever.Search(query, topN)
	printResults(results)
	return nil
}

func loadIndex(indexPath string) (*blaze.InvertedIndex, error) {
	if _, err := os.Stat(indexPath); err != nil {
		return nil, fmt.Errorf("%s: %w", indexPath, blaze.ErrMissingIndex)
	}
	idx := blaze.NewInvertedIndex()
	if err := idx.Load(indexPath); err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}
	return idx, nil
}

func newRetrieverFor(idx *blaze.InvertedIndex, corpusPath string) (*blaze.Retriever, error) {
	if corpusPath == "" {
		return blaze.NewRetriever(idx, nil), nil
	}
	provider, err := blaze.NewCorpusContentProvider(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("loading corpus for snippets: %w", err)
	}
	generator := blaze.NewSnippetGenerator(provider, idx.Config)
	return blaze.NewRetriever(idx, generator), nil
}

func printResults(results []blaze.Result) {
	if len(results) == 0 {
		fmt.Println("no results")
		return
	}
	for i, r := range results {
		fmt.Printf("%2d. %-20s score=%.4f\n", i+1, r.DocID, r.Score)
		if r.Snippet != "" {
			fmt.Printf("    %s\n", r.Snippet)
		}
	}
}
