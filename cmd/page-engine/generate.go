// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/page-engine/internal/assemble"
	"github.com/pdiddy/page-engine/internal/embed"
	"github.com/pdiddy/page-engine/internal/generate"
	"github.com/pdiddy/page-engine/internal/index"
	"github.com/pdiddy/page-engine/internal/llm"
	"github.com/pdiddy/page-engine/internal/templates"
	"github.com/pdiddy/page-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate a page as a stream of typed content blocks",
	Long: `Generate embeds the prompt, retrieves grounding context from the document
index, plans an outline, and expands each section as a stream of content
blocks with inline citations. Events are printed as they arrive.

With --json each event is printed as one JSON line, suitable for piping
into a page materializer; --yaml prints one YAML document per event.
Interrupt (Ctrl-C) cancels cooperatively: the
in-flight section finishes early and no new section begins.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("org", "", "organization scope ID (required)")
	generateCmd.Flags().String("company", "", "company ID for fact retrieval")
	generateCmd.Flags().String("deal", "", "deal ID to associate with the page")
	generateCmd.Flags().StringSlice("doc", nil, "restrict retrieval to document ID(s); exactly one narrows vector search")
	generateCmd.Flags().String("template", "", "path to a page template YAML file")
	generateCmd.Flags().String("model", "", "AI model identifier (overrides config)")
	generateCmd.Flags().Bool("json", false, "print events as JSON lines")
	generateCmd.Flags().Bool("yaml", false, "print events as YAML documents")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	orgID, _ := cmd.Flags().GetString("org")
	if orgID == "" {
		return fmt.Errorf("--org is required")
	}

	cfg := generationConfig(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no Anthropic API key: set generation.api_key or .secrets/anthropic-api-key")
	}

	store, err := index.NewStore(indexConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	req := types.GenerationRequest{Prompt: args[0], OrgID: orgID}
	req.CompanyID, _ = cmd.Flags().GetString("company")
	req.DealID, _ = cmd.Flags().GetString("deal")
	req.DocumentIDs, _ = cmd.Flags().GetStringSlice("doc")

	if path, _ := cmd.Flags().GetString("template"); path != "" {
		tmpl, err := templates.Load(path)
		if err != nil {
			return err
		}
		req.Template = tmpl
	}

	gen, err := generate.New(assemble.Deps{
		Embedder: embed.NewOllama(embeddingConfig()),
		Chunks:   store,
		Facts:    store,
	}, llm.NewAnthropic(cfg.AIConfig), cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	enc := json.NewEncoder(os.Stdout)

	for ev := range gen.GeneratePage(ctx, req) {
		switch {
		case asJSON:
			if err := enc.Encode(ev); err != nil {
				return err
			}
		case asYAML:
			out, err := yaml.Marshal(ev)
			if err != nil {
				return err
			}
			fmt.Printf("---\n%s", out)
		default:
			printEvent(ev)
		}
		if ev.Type == types.EventError {
			return fmt.Errorf("generation failed: %s", ev.Err)
		}
	}
	return ctx.Err()
}

// printEvent renders one event as a human-readable transcript line.
func printEvent(ev types.GenerationEvent) {
	switch ev.Type {
	case types.EventOutline:
		fmt.Printf("# %s\n", ev.Outline.Title)
		for i, s := range ev.Outline.Sections {
			fmt.Printf("  %d. %s\n", i+1, s.Title)
		}
	case types.EventSectionStart:
		fmt.Printf("\n== %s ==\n", ev.SectionTitle)
	case types.EventBlock:
		printBlock(ev.Block)
	case types.EventDatabaseCreated:
		fmt.Printf("  [database %q announced]\n", ev.DatabaseName)
	case types.EventSectionComplete:
		// Nothing to print; the next section announces itself.
	case types.EventComplete:
		fmt.Printf("\nDone: %d section(s), %d database(s), %d tokens.\n",
			ev.Usage.SectionsGenerated, ev.Usage.DatabasesCreated, ev.Usage.TotalTokens)
	case types.EventError:
		fmt.Fprintf(os.Stderr, "error: %s\n", ev.Err)
	}
}

func printBlock(b *types.GeneratedBlock) {
	switch b.Type {
	case types.BlockHeading:
		fmt.Printf("%s %s\n", strings.Repeat("#", max(b.Level, 1)), b.Content)
	case types.BlockBulletedList:
		for _, item := range b.Items {
			fmt.Printf("- %s\n", item)
		}
	case types.BlockNumberedList:
		for i, item := range b.Items {
			fmt.Printf("%d. %s\n", i+1, item)
		}
	case types.BlockCallout:
		fmt.Printf("> %s %s\n", b.Icon, b.Content)
	case types.BlockQuote:
		fmt.Printf("> %s\n", b.Content)
	case types.BlockCode:
		fmt.Printf("```%s\n%s\n```\n", b.Language, b.Content)
	case types.BlockDivider:
		fmt.Println("---")
	case types.BlockDatabase:
		cols := make([]string, len(b.Columns))
		for i, c := range b.Columns {
			cols[i] = c.Name
		}
		fmt.Printf("[database %q: %s]\n", b.Name, strings.Join(cols, ", "))
	default:
		fmt.Println(b.Content)
	}
}

// generationConfig assembles GenerationConfig from viper with flag and
// secret fallbacks.
func generationConfig(cmd *cobra.Command) types.GenerationConfig {
	cfg := types.DefaultGenerationConfig()
	sub := viper.Sub("generation")
	if sub != nil {
		_ = sub.Unmarshal(&cfg)
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model = model
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5-20250929"
	}
	cfg.APIKey = secretDefault("anthropic-api-key", cfg.APIKey)
	return cfg
}

// embeddingConfig assembles EmbeddingConfig from viper with secret fallbacks.
func embeddingConfig() types.EmbeddingConfig {
	var cfg types.EmbeddingConfig
	sub := viper.Sub("embedding")
	if sub != nil {
		_ = sub.Unmarshal(&cfg)
	}
	cfg.BaseURL = secretDefault("ollama-base-url", cfg.BaseURL)
	return cfg
}

// indexConfig assembles IndexConfig from viper.
func indexConfig() types.IndexConfig {
	cfg := types.IndexConfig{IndexDir: "index"}
	sub := viper.Sub("index")
	if sub != nil {
		_ = sub.Unmarshal(&cfg)
	}
	return cfg
}
