package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/bot"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/config"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/database"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/logging"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/secscan"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools/crypto"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools/exchange"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools/imagegen"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools/settings"
)

// adminTimeout bounds a one-shot database subcommand end to end.
const adminTimeout = 30 * time.Second

var (
	// Global flags
	verbose bool
	yes     bool

	cfg    *config.Config
	logger *zap.Logger

	// errSecretsFound maps scanner findings onto exit code 1 without an
	// extra error line; the report already said everything.
	errSecretsFound = errors.New("secrets found")
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jakeybot",
	Short: "JakeyBot - Discord tool bot for degens",
	Long: `JakeyBot is a Discord bot that dispatches slash commands to
third-party APIs: crypto price quotes, currency conversion, and image
generation, with a per-guild default tool stored in MongoDB.

Run without arguments to start the bot. Admin subcommands operate on
the database and the working tree without connecting to Discord.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level)
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
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

// runCmd starts the bot, same as running with no arguments
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Discord bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

// flushdbCmd deletes every default tool record
var flushdbCmd = &cobra.Command{
	Use:   "flushdb",
	Short: "Delete every default tool record",
	Long: `Deletes all documents from the default tool collection. Destructive;
requires --yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !yes {
			return fmt.Errorf("flushdb is destructive, re-run with --yes to confirm")
		}
		return withStore(cmd.Context(), func(ctx context.Context, store *database.Store) error {
			deleted, err := store.Flush(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d record(s).\n", deleted)
			return nil
		})
	},
}

// usageCmd prints how many guilds use each default tool
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the default tool distribution across guilds",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *database.Store) error {
			dist, err := store.ToolDistribution(ctx)
			if err != nil {
				return err
			}
			if len(dist) == 0 {
				fmt.Println("No records.")
				return nil
			}

			names := make([]string, 0, len(dist))
			for name := range dist {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%-20s %d\n", name, dist[name])
			}
			return nil
		})
	},
}

// setDefaultToolCmd overwrites the tool on every record
var setDefaultToolCmd = &cobra.Command{
	Use:   "set-default-tool [tool]",
	Short: "Set the default tool on every record",
	Long: `Overwrites the stored tool on every existing record, including
records currently set to "disabled". Accepts "disabled" to turn the
default off everywhere.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tool := args[0]
		return withStore(cmd.Context(), func(ctx context.Context, store *database.Store) error {
			modified, err := store.SetDefaultToolAll(ctx, tool)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d record(s) to %q.\n", modified, tool)
			return nil
		})
	},
}

// secretscanCmd scans the tree for leaked credentials
var secretscanCmd = &cobra.Command{
	Use:   "secretscan [paths...]",
	Short: "Scan files for leaked credentials",
	Long: `Scans the given paths (default: the current directory) against a
fixed catalog of credential patterns. Matches are printed masked.
Exits 1 when anything is found, 0 otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		roots := args
		if len(roots) == 0 {
			roots = []string{"."}
		}

		scanner := secscan.New(nil, logging.Named(logger, logging.NameScan))
		findings, err := scanner.Scan(cmd.Context(), roots)
		if err != nil {
			return err
		}

		fmt.Print(secscan.FormatReport(findings))
		if len(findings) > 0 {
			return errSecretsFound
		}
		return nil
	},
}

// runBot builds the registry, connects the store, and serves until a
// shutdown signal arrives.
func runBot(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *database.Store
	if err := cfg.ValidateDatabase(); err != nil {
		// The bot still serves without the store; only the feature
		// command needs it.
		logger.Warn("running without database", zap.Error(err))
	} else {
		connCtx, cancel := context.WithTimeout(ctx, adminTimeout)
		s, err := database.Connect(connCtx, cfg.Database, logging.Named(logger, logging.NameDatabase))
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		store = s
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Close(closeCtx)
		}()
	}

	registry, err := buildRegistry(ctx, store)
	if err != nil {
		return err
	}

	b, err := bot.New(cfg, registry, logging.Named(logger, logging.NameBot))
	if err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	logger.Info("bot running, press Ctrl+C to stop",
		zap.Strings("tools", registry.Names()))
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// buildRegistry registers every tool cog. Tools whose provider key is
// missing still register; they report the gap when invoked.
func buildRegistry(ctx context.Context, store *database.Store) (*tools.Registry, error) {
	registry := tools.NewRegistry(logging.Named(logger, logging.NameTools))

	cryptoClient := crypto.NewClient(cfg.Providers.CoinMarketCapKey, cfg.HTTP.Timeout)
	registry.MustRegister(crypto.PriceTool(cryptoClient))

	exchangeClient := exchange.NewClient(cfg.HTTP.Timeout)
	registry.MustRegister(exchange.ConvertTool(exchangeClient))
	registry.MustRegister(exchange.RatesTool(exchangeClient))

	generator, err := imagegen.New(ctx, cfg.Providers.GeminiKey, cfg.HTTP.ImageTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image generator: %w", err)
	}
	registry.MustRegister(imagegen.ImagineTool(generator))

	var toolStore settings.ToolStore
	if store != nil {
		toolStore = store
	}
	registry.MustRegister(settings.FeatureTool(toolStore, registry.Names))

	return registry, nil
}

// withStore connects, runs fn, and disconnects, under one deadline.
func withStore(ctx context.Context, fn func(context.Context, *database.Store) error) error {
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, adminTimeout)
	defer cancel()

	store, err := database.Connect(ctx, cfg.Database, logging.Named(logger, logging.NameDatabase))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = store.Close(ctx) }()

	return fn(ctx, store)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flushdbCmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(flushdbCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(setDefaultToolCmd)
	rootCmd.AddCommand(secretscanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSecretsFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
