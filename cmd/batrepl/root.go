package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/walteh/batrepl/pkg/config"
	"github.com/walteh/batrepl/pkg/journal"
	"github.com/walteh/batrepl/pkg/pairs"
	"github.com/walteh/batrepl/pkg/traverse"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	sourceFile string
	targetDir  string
	logName    string
	includes   []string
)

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batrepl",
		Short: "Batch find-and-replace in HTML/JS files",
		Long: `batrepl applies literal find-and-replace pairs from a CSV table to every
.html and .js file under a target directory. The table's encoding is
auto-detected (UTF-8, then Shift-JIS) and files are rewritten in place only
when their content actually changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds the flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "optional config file (.json, .yaml, .hcl, .batrepl)")
	cmd.Flags().StringVarP(&sourceFile, "source", "s", "", "path to the replacement table file")
	cmd.Flags().StringVarP(&targetDir, "target", "t", "", "target directory to rewrite")
	cmd.Flags().StringVarP(&logName, "log", "l", "NONE", "log level (NONE, DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	cmd.Flags().StringArrayVar(&includes, "include", nil, "file name patterns to rewrite (default *.html, *.js)")
}

// resolveConfig loads the optional config file and overlays explicit flags
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("source") || cfg.Source == "" {
		cfg.Source = sourceFile
	}
	if flags.Changed("target") || cfg.Target == "" {
		cfg.Target = targetDir
	}
	if flags.Changed("log") || cfg.Log == "" {
		cfg.Log = logName
	}
	if flags.Changed("include") {
		cfg.Include = includes
	}

	if err := cfg.Validate(cmd.Context()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run executes one full replacement pass
func run(ctx context.Context, cfg *config.Config) (errOut error) {
	level, err := journal.ParseLevel(cfg.Log)
	if err != nil {
		return errors.Errorf("parsing log level: %w", err)
	}

	// The log file lives next to the table file.
	j, err := journal.New(journal.Options{
		Dir:   filepath.Dir(cfg.Source),
		Level: level,
	})
	if err != nil {
		return errors.Errorf("creating run journal: %w", err)
	}
	defer func() {
		if err := j.Close(); err != nil && errOut == nil {
			errOut = err
		}
	}()

	if j.Enabled() {
		j.Infof("log file created: %s", j.Path())
	} else {
		j.Infof("logging is disabled, no log file will be created")
	}

	ctx = j.Context(ctx)

	// A table that cannot be loaded aborts the run before any file is
	// touched.
	loaded, err := pairs.Load(ctx, cfg.Source)
	if err != nil {
		j.Errorf("reading replacement table: %v", err)
		return err
	}

	driver, err := traverse.New(traverse.Options{
		Pairs:    loaded,
		Patterns: cfg.Include,
	})
	if err != nil {
		j.Errorf("configuring traversal: %v", err)
		return err
	}

	summary, err := driver.Run(ctx, cfg.Target)
	if err != nil {
		j.Errorf("replacement run failed: %v", err)
		return err
	}

	j.Successf("replacement operation completed: %s", summary)
	return nil
}
