// Package main provides the entry point for the remglk reference CLI: a
// demo host/terminal client built on internal/host and internal/termui.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ExitError represents an error that should cause the program to exit
// with a specific code, mirroring glow's signal-to-exit-code bubbling.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit with code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

const (
	ExitCodeSIGINT  = 128 + 2
	ExitCodeSIGTERM = 128 + 15
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	workingDir string
	width      int
	height     int

	rootCmd = &cobra.Command{
		Use:              "remglk",
		Short:            "Run a headless Glk/GlkOte runtime against a terminal display",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
	}
)

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/remglk/remglk.yml)")
	rootCmd.PersistentFlags().StringVar(&workingDir, "dir", ".", "working directory for filerefs")
	rootCmd.PersistentFlags().IntVar(&width, "width", 0, "terminal width override (0: auto-detect)")
	rootCmd.PersistentFlags().IntVar(&height, "height", 0, "terminal height override (0: auto-detect)")

	_ = viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("width", rootCmd.PersistentFlags().Lookup("width"))
	_ = viper.BindPFlag("height", rootCmd.PersistentFlags().Lookup("height"))

	rootCmd.AddCommand(runCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "remglk")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not locate configuration directory: %v\n", err)
		return
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{c + "/remglk"}, dirs...)
	}
	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("remglk")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("remglk")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("could not parse configuration file", "err", err)
		}
		return
	}
	log.Debug("using configuration file", "path", viper.ConfigFileUsed())
}

// ProgramConfig is the small env-only configuration surface parsed via
// caarlos0/env, layered underneath the cobra/viper flags (SPEC_FULL.md
// §2a's "Configuration" section).
type ProgramConfig struct {
	Debug bool `env:"DEBUG" envDefault:"false"`
}

func loadProgramConfig() (ProgramConfig, error) {
	return env.ParseAs[ProgramConfig]()
}

func main() {
	var sig os.Signal
	var err error

	ctx, cancel := context.WithCancel(context.Background())
	signal.Ignore(syscall.SIGPIPE)

	notify := make(chan os.Signal, 1)
	signal.Notify(notify, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case s := <-notify:
			sig = s
			cancel()
		case <-ctx.Done():
		}
	}()

	defer func() {
		signal.Stop(notify)
		cancel()

		if sig != nil && err == nil {
			switch sig {
			case syscall.SIGINT:
				err = &ExitError{Code: ExitCodeSIGINT, Err: errors.New("interrupted")}
			case syscall.SIGTERM:
				err = &ExitError{Code: ExitCodeSIGTERM, Err: errors.New("terminated")}
			}
		}

		if err != nil {
			var exitErr *ExitError
			if errors.As(err, &exitErr) {
				os.Exit(exitErr.Code)
			}
			os.Exit(1)
		}
	}()

	closer, logErr := setupLog()
	if logErr != nil {
		fmt.Println(logErr)
		err = logErr
		return
	}
	defer closer()

	err = rootCmd.ExecuteContext(ctx)
}
