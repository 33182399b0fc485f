package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yukr-lang/yukr"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v      *viper.Viper
	logger zerolog.Logger
	stderr io.Writer
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI with the given arguments and returns the process
// exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, red(err.Error()))
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		logger: zerolog.Nop(),
		stderr: stderr,
	}
	root := &cobra.Command{
		Use:           "yukr",
		Short:         "Compile, run and inspect yukr bytecode",
		Version:       yukr.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is ./.yukr.yaml)")
	flags.Bool("no-fold", false, "disable constant folding")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(a.compileCmd(), a.runCmd(), a.disCmd())
	return root
}

// configure loads the config file and environment, binds the flags of the
// executing command and sets up color and logging.
func (a *app) configure(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	a.v.SetEnvPrefix("yukr")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName(".yukr")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q", a.v.GetString("log-level"))
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     a.stderr,
		NoColor: color.NoColor,
	}).Level(level).With().Timestamp().Logger()
	if file := a.v.ConfigFileUsed(); file != "" {
		a.logger.Debug().Str("file", file).Msg("loaded config")
	}
	return nil
}

// options returns the yukr options derived from the configuration.
func (a *app) options(cmd *cobra.Command) []yukr.Option {
	opts := []yukr.Option{
		yukr.WithOutput(cmd.OutOrStdout()),
		yukr.WithLogger(a.logger),
	}
	if a.v.GetBool("no-fold") {
		opts = append(opts, yukr.WithoutFolding())
	}
	return opts
}
