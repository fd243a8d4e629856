package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:   "man",
	Short: "Generates manpages",
	Long: "man renders the full remglk(1) manpage, including the " +
		"glkapi runtime's run/config subcommands, so it can be piped " +
		"straight into a system man directory without a separate " +
		"packaging step.",
	Example:               "  remglk man | gzip > /usr/local/share/man/man1/remglk.1.gz",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "remglk"})
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			logger.Error("failed to build manpage", "err", err)
			return err
		}
		_, err = fmt.Fprint(os.Stdout, manPage.Build(roff.NewDocument()))
		if err != nil {
			logger.Error("failed to write manpage to stdout", "err", err)
		}
		return err
	},
}
