package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glkgo/remglk/internal/glkapi"
	"github.com/glkgo/remglk/internal/host"
	"github.com/glkgo/remglk/internal/termui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bundled demo session against the terminal client",
	Long: "run starts the Glk runtime with a tiny built-in demo program " +
		"(no external game file) and drives it through the terminal GlkOte " +
		"client, so the in-process transport, window layout, and input " +
		"handling can all be exercised end to end.",
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, _ []string) error {
	logger := log.NewWithOptions(cmd.OutOrStderr(), log.Options{Prefix: "remglk"})
	if viper.GetBool("debug") {
		logger.SetLevel(log.DebugLevel)
	}

	h, err := host.New(viper.GetString("dir"), logger)
	if err != nil {
		return fmt.Errorf("unable to set up host: %w", err)
	}
	defer h.Close()

	api := glkapi.New(h)

	errCh := make(chan error, 1)
	go func() {
		errCh <- termui.RunDemoSession(api)
	}()

	if err := termui.Run(h, viper.GetInt("width"), viper.GetInt("height")); err != nil {
		return fmt.Errorf("terminal client error: %w", err)
	}

	return <-errCh
}
