// Package commands provides CLI commands for stormchat.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/stormchat/internal/models"
)

var (
	// Global flags
	modelFlag     string
	endpointFlag  string
	uploadURLFlag string
	logLevelFlag  string
	personaFlag   string

	// Root flags
	screenFlag string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// deps is swapped out by tests
var deps = NewDependencies()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "stormchat",
	Short: "Terminal chat client for a streamed completions server",
	Long: `stormchat talks to an OpenAI-compatible /v1/completions server and shows
the reply as it streams in. A second screen uploads files to a companion
upload service.

Examples:
  stormchat                              Open the chat screen
  stormchat --screen upload              Open the upload screen
  stormchat ask "What is Go?"            Send a single prompt
  cat prompt.md | stormchat ask          Read the prompt from stdin
  stormchat upload report.pdf            Upload a file
  stormchat --persona coder              Chat with the coder persona`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "stormchat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		screen, err := models.ParseScreen(screenFlag)
		if err != nil {
			return err
		}
		return runShell(cmd, screen)
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model name sent with each request")
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Completions endpoint URL")
	rootCmd.PersistentFlags().StringVar(&uploadURLFlag, "upload-url", "", "Upload endpoint URL")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&personaFlag, "persona", "p", "", "Persona whose system prompt is used")
	rootCmd.Flags().StringVar(&screenFlag, "screen", "chat", "Initial screen (chat or upload)")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(personaCmd)
}
