package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/app"
	"github.com/benewagner/musicmapping/internal/config"
	"github.com/benewagner/musicmapping/internal/logging"
	"github.com/benewagner/musicmapping/internal/screens/exercise"
	"github.com/benewagner/musicmapping/internal/screens/library"
	"github.com/benewagner/musicmapping/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "musicmapping",
	Short: "Music theory matching exercises in the terminal",
	Long: "musicmapping plays matching exercises: connect every question card to its answer,\n" +
		"then check your connections. Exercises are kept in a local library.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		st, err := env.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		return app.Run(library.New(st.ExerciseRepo(), env.exerciseOptions()), env.log)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String(config.FlagDB, "", "Path to the library database (overrides "+config.EnvDB+")")
	rootCmd.PersistentFlags().String(config.FlagLogLevel, "", "Log level: debug, info, warn, error (overrides "+config.EnvLogLevel+")")
	rootCmd.PersistentFlags().String(config.FlagCDNRoot, "", "Base URL that cdn:// sources resolve against (overrides "+config.EnvCDNRoot+")")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// environment is the resolved configuration and logger shared by commands.
type environment struct {
	cfg config.Config
	log *zap.Logger
}

// setup resolves configuration (.env, environment, flags) and builds the
// file logger.
func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log.Debug("starting", zap.String("command", cmd.CommandPath()), zap.String("db", cfg.DBPath))
	return &environment{cfg: cfg, log: log}, nil
}

func (e *environment) openStore() (*store.Store, error) {
	st, err := store.Open(e.cfg.DBPath)
	if err != nil {
		e.log.Error("open library", zap.String("path", e.cfg.DBPath), zap.Error(err))
		return nil, fmt.Errorf("open library: %w", err)
	}
	return st, nil
}

func (e *environment) exerciseOptions() exercise.Options {
	return exercise.Options{CDNRoot: e.cfg.CDNRoot, Logger: e.log}
}

// Close flushes the logger.
func (e *environment) Close() {
	_ = e.log.Sync()
}
