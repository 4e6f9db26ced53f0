// Command tdtsearch builds and queries a positional inverted index over
// a corpus of SGML-tagged documents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tdtsearch",
		Short: "tdtsearch is a full-text search engine over SGML document corpora",
		Long: `tdtsearch builds a BM25-ranked, phrase-aware inverted index over a
corpus of SGML-tagged documents and lets you search it from the
command line.

Get started:
  tdtsearch index <corpus> <index-file>      Build an index
  tdtsearch search <index-file> <query>      Run a single query
  tdtsearch interactive <index-file>         Open a search REPL`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newIndexCommand())
	root.AddCommand(newSearchCommand())
	root.AddCommand(newInteractiveCommand())

	return root
}
