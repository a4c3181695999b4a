package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gramsetu-be/config"
	"gramsetu-be/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "gramsetu",
	Short: "GramSetu backend - village issue reporting and gram sevak tracking",
	Long: `gramsetu serves the GramSetu API: villagers report and vote on issues,
admins triage them, and assigned gram sevaks report progress back.
Running without a subcommand starts the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun(cmd)
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore builds the store selected by cfg. The returned close func
// is always non-nil.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		slog.Warn("using in-memory store; data is lost on exit")
		return store.NewMemory(), func() {}, nil
	}

	client, db, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}
	return store.NewMongo(client, db, cfg.MongoTransactions), closeFn, nil
}
