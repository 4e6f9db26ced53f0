package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	blaze "github.com/YAN-MQ/tdtsearch"
)

func newIndexCommand() *cobra.Command {
	var threads int

	c := &cobra.Command{
		Use:   "index <corpus-path> <index-file>",
		Short: "Build an inverted index from a corpus directory or file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(args[0], args[1], threads)
		},
	}

	c.Flags().IntVar(&threads, "threads", 0, "worker count (defaults to INDEXER_THREADS or min(NumCPU,8))")
	return c
}

func runIndex(corpusPath, indexPath string, threads int) error {
	cfg := blaze.DefaultConfig()
	if threads > 0 {
		cfg.MaxThreads = threads
	}

	loader := blaze.NewDocumentLoader(corpusPath)
	documents, err := loader.Load(cfg.ResolveThreads())
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	idx := blaze.NewInvertedIndexWithConfig(cfg)
	indexer := blaze.NewIndexer(idx)

	start := time.Now()
	indexer.BuildIndex(documents)

	if err := idx.Save(indexPath); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	totalDocs, totalTerms := idx.CorpusStats()
	fmt.Printf("indexed %d documents (%d total terms) in %s\n", totalDocs, totalTerms, time.Since(start).Round(time.Millisecond))
	fmt.Printf("index written to %s\n", indexPath)
	return nil
}
