package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/postline/cli/internal/auth"
	"github.com/postline/cli/internal/config"
	"github.com/postline/cli/internal/media"
)

var (
	uploadFile        string
	uploadTitle       string
	uploadDescription string
	uploadBaseURL     string
	uploadOutputJSON  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a large video file to Postline",
	Long: `Upload a video file to Postline using the resumable session protocol.

The file is transmitted in 4 MiB chunks; each chunk is confirmed by the
server before the next one is sent. Press Ctrl-C to pause: the in-flight
chunk finishes, the session is checkpointed locally, and 'postline resume'
continues it later from the confirmed offset.

Files of 1 GiB or less must be uploaded through the dashboard instead.

Examples:
  # Upload with post metadata
  postline upload --file launch.mp4 --title "Launch day" --description "..."

  # JSON output for scripting
  postline upload --file launch.mp4 --json`,
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadFile == "" {
		return fmt.Errorf("--file is required")
	}

	// Load credentials
	creds, err := auth.LoadCredentials()
	if err != nil {
		return fmt.Errorf("authentication required: %w\nRun 'postline auth login' to authenticate", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	src, err := media.OpenFile(uploadFile)
	if err != nil {
		return err
	}
	defer src.Close()

	if !uploadOutputJSON {
		fmt.Printf("Uploading %s (%d bytes)...\n", uploadFile, src.Size)
	}

	ctrl := newUploadController(cfg, creds, uploadBaseURL, uploadOutputJSON)
	stopPause := pauseOnInterrupt(ctrl, uploadOutputJSON)
	defer stopPause()

	err = ctrl.StartUpload(context.Background(), src, uploadTitle, uploadDescription)
	return reportUploadOutcome(ctrl, err, uploadFile, uploadOutputJSON)
}

// newUploadController wires a controller with the configured endpoint, the
// terminal progress bar and the local checkpoint store.
func newUploadController(cfg *config.Config, creds *auth.Credentials, baseURL string, jsonOutput bool) *media.Controller {
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	client := media.NewClient(baseURL, creds)

	opts := []media.Option{}
	if !jsonOutput {
		renderer := newProgressRenderer()
		opts = append(opts, media.WithProgressFunc(renderer.Update))
	}
	if store := openCheckpointStore(cfg); store != nil {
		opts = append(opts, media.WithCheckpoints(store))
	}

	return media.NewController(client, opts...)
}

func openCheckpointStore(cfg *config.Config) *media.CheckpointStore {
	dir := cfg.CheckpointDir
	if dir == "" {
		var err error
		dir, err = media.DefaultCheckpointDir()
		if err != nil {
			return nil
		}
	}
	return media.NewCheckpointStore(dir)
}

// pauseOnInterrupt maps the first Ctrl-C to a cooperative pause. A second
// Ctrl-C exits immediately.
func pauseOnInterrupt(ctrl *media.Controller, jsonOutput bool) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		if _, ok := <-ch; !ok {
			return
		}
		ctrl.Pause()
		if !jsonOutput {
			fmt.Println("\nPausing after the current chunk...")
		}
		if _, ok := <-ch; ok {
			exit(1)
		}
	}()
	return func() {
		signal.Stop(ch)
		close(ch)
	}
}

func reportUploadOutcome(ctrl *media.Controller, err error, filePath string, jsonOutput bool) error {
	sess := ctrl.Session()

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		out := struct {
			media.Session
			Percent int    `json:"percent"`
			Error   string `json:"error,omitempty"`
		}{Session: sess, Percent: media.Progress{SessionID: sess.ID, Offset: sess.Offset, TotalSize: sess.TotalSize}.Percent()}
		if err != nil {
			out.Error = err.Error()
		}
		if encErr := encoder.Encode(out); encErr != nil {
			return encErr
		}
		return err
	}

	fmt.Println()
	if err != nil {
		if errors.Is(err, media.ErrBelowThreshold) {
			fmt.Println(errorStyle.Render("File is too small for resumable upload."))
			fmt.Println(hintStyle.Render("Files of 1 GiB or less upload directly through the dashboard."))
			return err
		}
		fmt.Println(errorStyle.Render("Upload failed."))
		if sess.ID != "" {
			fmt.Printf("  Session: %s\n", sess.ID)
			fmt.Printf("  Confirmed offset: %d of %d bytes\n", sess.Offset, sess.TotalSize)
			fmt.Println(hintStyle.Render("  If the session is still valid, 'postline resume' can continue it."))
		}
		return err
	}

	switch sess.Status {
	case media.StatusPaused:
		fmt.Printf("Upload paused at %d of %d bytes.\n", sess.Offset, sess.TotalSize)
		fmt.Printf("  Session: %s\n", sess.ID)
		fmt.Println(hintStyle.Render(fmt.Sprintf("  Continue with: postline resume --file %s", filePath)))
	case media.StatusCompleted:
		fmt.Println(successStyle.Render("Upload complete."))
		if sess.PostID != "" {
			fmt.Printf("  Post ID: %s\n", sess.PostID)
		}
	}
	return nil
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFile, "file", "", "Path to the video file to upload (required)")
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "Title for the resulting post")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "Description for the resulting post")
	uploadCmd.Flags().StringVar(&uploadBaseURL, "base-url", "", "Base URL for the Postline API")
	uploadCmd.Flags().BoolVar(&uploadOutputJSON, "json", false, "Output result as JSON")
	uploadCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(uploadCmd)
}
