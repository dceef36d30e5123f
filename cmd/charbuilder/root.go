package main

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/config"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/rules"
)

// run executes one command line and always releases the store
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	a := &app{v: config.New()}
	defer func() {
		if closeErr := a.close(); err == nil {
			err = closeErr
		}
	}()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "charbuilder",
		Short: "D&D 5e character build rules engine",
		Long: `charbuilder validates, stores and edits D&D 5e character builds.
Rules come from the embedded SRD tables; equipment and spells come from the D&D 5e API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.String("store", "", "record store backend: redis or sqlite")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	_ = a.v.BindPFlag("store.backend", flags.Lookup("store"))     // nolint:errcheck // flag exists
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level")) // nolint:errcheck // flag exists

	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newRollCmd(a))
	rootCmd.AddCommand(newCatalogCmd(a))
	rootCmd.AddCommand(newCharactersCmd(a))
	rootCmd.AddCommand(newFeedbackCmd(a))
	rootCmd.AddCommand(newStoreCmd(a))

	return rootCmd
}

// setup loads .env, the config file and the rule tables, then installs the logger
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to load .env")
	}

	if a.configPath != "" {
		a.v.SetConfigFile(a.configPath)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.WrapWithCode(err, errors.CodeInvalidArgument, "reading config file")
		}
	}

	cfg, err := config.LoadFromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	})))

	tables, err := rules.Default()
	if err != nil {
		return errors.Wrap(err, "failed to load rule tables")
	}
	a.tables = tables

	slog.Debug("Configuration loaded",
		"store_backend", cfg.Store.Backend,
		"config_file", a.v.ConfigFileUsed(),
	)
	return nil
}
