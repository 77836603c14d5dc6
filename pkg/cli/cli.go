package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

const (
	envFileFlag    = "env-file"
	envFileEnv     = "KUJO_ENV_FILE"
	defaultEnvFile = ".env"
)

var rootBoolFlags = map[string]bool{"help": true, "h": true, "version": true, "v": true}

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, w io.Writer) error {
	// KUJO_* flag sources are resolved while parsing, so the file must be loaded first
	if err := loadEnvFile(envFileFromArgs(args)); err != nil {
		return err
	}

	var (
		loggerCfg config.Logger
		envFile   string
	)

	flags := joinFlags(
		loggerCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        envFileFlag,
				Usage:       "Dotenv file loaded before any other setting is read, ignored when missing",
				Value:       defaultEnvFile,
				Sources:     cli.EnvVars(envFileEnv),
				Destination: &envFile,
			},
		},
	)

	app := &cli.Command{
		Name:    "kujo",
		Usage:   "Complaint dashboard with an LLM assistant",
		Version: "0.1.0",
		Flags:   flags,
		Writer:  w,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdSummary(),
			cmdSubmit(),
			cmdAsk(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return goerr.Wrap(err, "CLI execution failed")
	}

	return nil
}

// envFileFromArgs finds the --env-file value among the root flags in args, the last one
// winning, then falls back to KUJO_ENV_FILE and ".env". Scanning stops at the first command
// name or "--", so a subcommand cannot set it.
func envFileFromArgs(args []string) string {
	if len(args) > 0 {
		args = args[1:]
	}

	path, found := "", false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != envFileFlag {
			// every root flag except help and version takes a value
			if !hasValue && !rootBoolFlags[name] {
				i++
			}
			continue
		}
		if !hasValue {
			i++
			if i < len(args) {
				value = args[i]
			}
		}
		path, found = value, true
	}
	if found {
		return path
	}

	if v, ok := os.LookupEnv(envFileEnv); ok {
		return v
	}
	return defaultEnvFile
}

// loadEnvFile sets variables from a dotenv file without overriding the environment
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}
