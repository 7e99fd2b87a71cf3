// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/page-engine/internal/embed"
	"github.com/pdiddy/page-engine/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the document index (add, facts, status)",
	Long: `Index manages the local SQLite document index that grounds generation.
Use subcommands to ingest Markdown documents, import extracted facts, or
inspect what each organization has indexed.`,
}

// --- add subcommand ---

var indexAddCmd = &cobra.Command{
	Use:   "add [dir]",
	Short: "Ingest a directory of Markdown documents for an organization",
	Long: `Add splits each Markdown file into heading-delimited chunks, embeds
them via the configured embedding server, and stores them in the index.
Re-ingesting a file replaces its previous chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexAdd,
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	orgID, _ := cmd.Flags().GetString("org")
	if orgID == "" {
		return fmt.Errorf("--org is required")
	}

	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	embedder := embed.NewOllama(embeddingConfig())
	summary, err := store.IngestDir(context.Background(), embedder, orgID, args[0], os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d document(s), %d chunk(s).\n", summary.Documents, summary.Chunks)
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- facts subcommand ---

var indexFactsCmd = &cobra.Command{
	Use:   "facts [file.yaml]",
	Short: "Import extracted facts for an organization",
	Long: `Facts imports a YAML file of (subject, predicate, object) records with
confidence scores, scoped to one company within the organization. Fact
retrieval during generation is ordered by confidence descending.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexFacts,
}

func runIndexFacts(cmd *cobra.Command, args []string) error {
	orgID, _ := cmd.Flags().GetString("org")
	if orgID == "" {
		return fmt.Errorf("--org is required")
	}

	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ImportFacts(context.Background(), orgID, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d fact(s).\n", n)
	return nil
}

// --- status subcommand ---

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-organization index contents",
	RunE:  runIndexStatus,
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	statuses, err := store.Status()
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(statuses)
	}

	if len(statuses) == 0 {
		fmt.Println("Index is empty.")
		return nil
	}
	for _, st := range statuses {
		fmt.Printf("%s: %d document(s), %d chunk(s), %d fact(s)\n", st.OrgID, st.Documents, st.Chunks, st.Facts)
	}
	return nil
}

func init() {
	indexAddCmd.Flags().String("org", "", "organization scope ID (required)")
	indexFactsCmd.Flags().String("org", "", "organization scope ID (required)")
	indexStatusCmd.Flags().Bool("json", false, "output as JSON")

	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexFactsCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}
