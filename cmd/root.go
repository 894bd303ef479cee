package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/postline/cli/internal/auth"
	"github.com/postline/cli/internal/config"
)

var version = "1.0.0" // This will be set during build

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "postline",
	Short: "Postline CLI - Upload large media for scheduled social posts",
	Long: `Postline CLI is a command-line companion to the Postline dashboard. It exists
for the one thing a browser does badly: uploading multi-gigabyte video files.
Uploads are chunked, sequential and resumable; an interrupted upload can be
continued later from the last byte the server confirmed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := auth.CredentialStatus()
		fmt.Printf("Postline CLI v%s\n\n", version)
		fmt.Printf("Authentication: %s\n", status)

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.BaseURL != "" {
			fmt.Printf("API endpoint: %s\n", cfg.BaseURL)
		}

		fmt.Println("\nRun 'postline upload --file video.mp4' to start an upload,")
		fmt.Println("or 'postline --help' for all commands.")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Postline CLI v%s\n", version)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// exit is a variable that can be overridden for testing purposes
var exit = os.Exit
