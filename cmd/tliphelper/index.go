package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heihei0314/TLIPHelper/config"
	"github.com/heihei0314/TLIPHelper/internal/retrieval"
)

// indexCMD builds the reference index once and reports what it ingested,
// useful for checking a docs directory before enabling retrieval.
func indexCMD() *cobra.Command {
	var cfgPath string
	var docsDir string
	var index = &cobra.Command{
		Use:   "index",
		Short: "Build the reference-document index and print stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if docsDir == "" {
				docsDir = cfg.Retrieval.DocsDir
			}
			if docsDir == "" {
				return fmt.Errorf("no docs directory: set --docs or retrieval.docs_dir")
			}

			idx, err := retrieval.BuildIndex(docsDir, cfg.Retrieval.TopK, cfg.Retrieval.SnippetLimit, nil)
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d chunks from %s\n", idx.Len(), docsDir)
			return nil
		},
	}
	index.Flags().StringVar(&docsDir, "docs", "", "docs directory (default from config)")
	index.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return index
}
