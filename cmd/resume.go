package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postline/cli/internal/auth"
	"github.com/postline/cli/internal/config"
	"github.com/postline/cli/internal/media"
)

var (
	resumeSessionID  string
	resumeFile       string
	resumeBaseURL    string
	resumeOutputJSON bool
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Continue a paused or interrupted upload",
	Long: `Continue an upload from the last byte the server confirmed.

The session is found either by --session-id, or by --file alone when a local
checkpoint was recorded for that path. The file must be byte-identical to the
one the upload started with; the server can verify its size and name but not
its content, and resuming with different content corrupts the uploaded media.

Examples:
  # Resume by local file (uses the recorded checkpoint)
  postline resume --file launch.mp4

  # Resume an explicit session
  postline resume --session-id SESSION --file launch.mp4`,
	RunE: runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	if resumeFile == "" {
		return fmt.Errorf("--file is required")
	}

	creds, err := auth.LoadCredentials()
	if err != nil {
		return fmt.Errorf("authentication required: %w\nRun 'postline auth login' to authenticate", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sessionID := resumeSessionID
	if sessionID == "" {
		store := openCheckpointStore(cfg)
		if store == nil {
			return fmt.Errorf("--session-id is required (no checkpoint store available)")
		}
		cp, err := store.FindByPath(resumeFile)
		if err != nil {
			return fmt.Errorf("no recorded upload for %s: %w\nPass --session-id to resume explicitly", resumeFile, err)
		}
		sessionID = cp.SessionID
	}

	src, err := media.OpenFile(resumeFile)
	if err != nil {
		return err
	}
	defer src.Close()

	ctrl := newUploadController(cfg, creds, resumeBaseURL, resumeOutputJSON)
	stopPause := pauseOnInterrupt(ctrl, resumeOutputJSON)
	defer stopPause()

	p, err := ctrl.Resume(context.Background(), sessionID, src)
	if err != nil {
		return reportUploadOutcome(ctrl, err, resumeFile, resumeOutputJSON)
	}

	if !resumeOutputJSON {
		fmt.Printf("Resuming %s from %d of %d bytes (%d%%)...\n", resumeFile, p.Offset, p.TotalSize, p.Percent())
	}

	err = ctrl.Transfer(context.Background())
	return reportUploadOutcome(ctrl, err, resumeFile, resumeOutputJSON)
}

func init() {
	resumeCmd.Flags().StringVar(&resumeSessionID, "session-id", "", "Session ID of the upload to continue")
	resumeCmd.Flags().StringVar(&resumeFile, "file", "", "Path to the same file the upload started with (required)")
	resumeCmd.Flags().StringVar(&resumeBaseURL, "base-url", "", "Base URL for the Postline API")
	resumeCmd.Flags().BoolVar(&resumeOutputJSON, "json", false, "Output result as JSON")
	resumeCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(resumeCmd)
}
