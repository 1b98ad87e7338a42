package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"auto_slide_deck_generator/config"
	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/metrics"
	"auto_slide_deck_generator/pipeline"
	"auto_slide_deck_generator/render"
	"auto_slide_deck_generator/search"
)

var (
	configPath string
	topic      string
	presenter  string
	template   string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "slidegen",
	Short: "Generate a researched, themed slide deck from a topic",
	Long: `slidegen expands a topic into search queries, gathers web snippets,
plans a 7-slide outline, distills facts per slide, writes each slide and
renders the result as a .pptx file. The output path is printed on success.

Example:
  slidegen --topic "Water Scarcity" --presenter "Dana" --template Minimalist_Dark`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config.json (default: config/config.json or ./config.json if present)")
	rootCmd.Flags().StringVar(&topic, "topic", "", "presentation topic")
	rootCmd.Flags().StringVar(&presenter, "presenter", pipeline.DefaultPresenter, "presenter name shown on the title slide")
	rootCmd.Flags().StringVar(&template, "template", pipeline.DefaultTemplate, "theme name, e.g. Minimalist_Dark or Business_Corporate")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	_ = rootCmd.MarkFlagRequired("topic")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	agent, err := generator.NewAgent(llm,
		generator.WithLogger(logger.Named("generator")),
		generator.WithCallTimeout(cfg.LLM.Timeout),
		generator.WithRetry(cfg.LLM.MaxRetries, 0),
	)
	if err != nil {
		return err
	}

	gatherer, err := buildGatherer(cfg.Search)
	if err != nil {
		return err
	}

	themes, err := render.LoadThemes(cfg.Render.ThemesFile)
	if err != nil {
		return err
	}
	renderer := render.New(cfg.Render.OutputDir,
		render.WithThemes(themes),
		render.WithOutline(cfg.Render.Outline),
		render.WithLogger(logger.Named("render")),
	)

	rec := metrics.New()
	p, err := pipeline.New(agent, gatherer, renderer,
		pipeline.WithLogger(logger.Named("pipeline")),
		pipeline.WithMetrics(rec),
	)
	if err != nil {
		return err
	}

	st, runErr := p.Run(ctx, pipeline.Request{Topic: topic, PresenterName: presenter, TemplateName: template})

	if cfg.Metrics.PushgatewayURL != "" {
		pctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := rec.Push(pctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, st.RunID); err != nil {
			logger.Warn("metrics push failed", zap.Error(err))
		}
		cancel()
	}
	if runErr != nil {
		return runErr
	}

	for _, n := range st.Notes {
		logger.Debug("run note", zap.String("run_id", st.RunID), zap.String("note", n))
	}
	fmt.Fprintln(cmd.OutOrStdout(), st.OutputPath)
	return nil
}

func buildLLM(ctx context.Context, c config.LLMConfig) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
	}
	switch c.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if c.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "gemini":
		return generator.NewGeminiLLMFromConfig(ctx, settings)
	case "mock":
		logger.Warn("using mock llm; slides will contain placeholder text")
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", c.Provider)
	}
}

func buildGatherer(c config.SearchConfig) (*search.Gatherer, error) {
	if c.Provider == string(search.MockProvider) {
		logger.Warn("using mock search; results are offline fixtures")
	}
	searcher, err := search.NewSearcher(search.Provider(c.Provider), search.Settings{
		APIKey: c.APIKey,
		Depth:  c.Depth,
		Client: &http.Client{Timeout: c.Timeout},
	})
	if err != nil {
		return nil, err
	}
	opts := []search.GatherOption{
		search.WithLogger(logger.Named("search")),
		search.WithMaxResults(c.MaxResults),
		search.WithConcurrency(c.Concurrency),
		search.WithRateLimit(c.RatePerSecond),
		search.WithCallTimeout(c.Timeout),
		search.WithRetry(c.MaxRetries, 0),
	}
	if c.EnrichEmpty {
		fetcher := search.NewReadabilityFetcher(&http.Client{Timeout: c.FetchTimeout}, c.MaxFetchChars)
		opts = append(opts, search.WithFetcher(fetcher))
	}
	return search.NewGatherer(searcher, opts...)
}
