package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/drgolem/tmediago/internal/logging"
)

var verbose bool

// logger is set up once per invocation in rootCmd's PersistentPreRun, since
// the verbosity flag isn't known until flags are parsed.
var logger *log.Logger

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tmediago",
	Short: "Terminal media player engine",
	Long: `tmediago - a terminal media player engine.

Decodes arbitrary audio/video containers via an external demux-and-decode
library and plays them through the terminal: audio out a PortAudio device,
video rendered as colored terminal glyphs.

Commands:
  - play: Play a single media file
  - playlist: Play a sequence of media files with shuffle/loop control`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose (debug) logging")
}
