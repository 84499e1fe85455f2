package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/config"
	"github.com/matsen/paperref/internal/embedding"
	"github.com/matsen/paperref/internal/recommend"
)

var (
	recommendLimit    int
	recommendSemantic bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend papers related to the library",
	Long: `Recommend papers related to the library.

Candidates are Semantic Scholar recommendations for the library papers plus
their citations and references. Papers already in the library are dropped.
Candidates are ranked by citation count, or with --semantic by embedding
similarity to the library (requires a running Ollama).

Examples:
  paperref recommend --limit 20
  paperref recommend --semantic --human`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "l", recommend.DefaultLimit, "Number of recommendations")
	recommendCmd.Flags().BoolVar(&recommendSemantic, "semantic", false, "Rank by embedding similarity instead of citation count")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger(false)

	store := mustOpenLibrary()
	papers, err := store.Load()
	if err != nil {
		exitWithErr("reading library", err)
	}

	var embedder embedding.Provider
	if recommendSemantic {
		provider := newEmbeddingProvider()
		if err := provider.Check(ctx); err != nil {
			exitWithErr("checking ollama", err)
		}
		embedder = provider
	}

	cfg := loadConfig(store.Root())
	recommender := recommend.New(newS2Client(cfg, logger), embedder, logger)
	recs, err := recommender.Recommend(ctx, papers, recommend.Options{
		Limit:    recommendLimit,
		Semantic: recommendSemantic,
	})
	if err != nil {
		exitWithErr("recommending", err)
	}

	if !humanOutput {
		if recs == nil {
			recs = []recommend.Recommendation{}
		}
		outputJSON(recs)
		return nil
	}

	if len(recs) == 0 {
		outputHuman("No recommendations.\n")
		return nil
	}
	for i, r := range recs {
		outputHuman("%d. [%.2f, %s] %s\n", i+1, r.Score, r.Origin, r.ID)
		printDetailHuman(r.Detail, "   ")
		outputHuman("\n")
	}
	return nil
}

func newEmbeddingProvider() *embedding.OllamaProvider {
	return embedding.NewOllamaProvider(
		embedding.WithBaseURL(config.GetOllamaURL()),
		embedding.WithModel(config.GetEmbeddingModel()),
	)
}
