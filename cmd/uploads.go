package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postline/cli/internal/config"
	"github.com/postline/cli/internal/media"
)

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "List uploads that can be resumed",
	Long: `List local checkpoints of interrupted uploads.

Each entry shows the session id, the original file and how much of it the
server has confirmed. Continue one with 'postline resume --file PATH'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store := openCheckpointStore(cfg)
		if store == nil {
			return fmt.Errorf("no checkpoint store available")
		}

		cps, err := store.List()
		if err != nil {
			return err
		}
		if len(cps) == 0 {
			fmt.Println("No resumable uploads.")
			return nil
		}

		for _, cp := range cps {
			pct := media.Progress{SessionID: cp.SessionID, Offset: cp.Offset, TotalSize: cp.TotalSize}.Percent()
			fmt.Printf("%s  %3d%%  %s\n", cp.SessionID, pct, cp.FilePath)
			fmt.Printf("  %d of %d bytes confirmed, last update %s\n", cp.Offset, cp.TotalSize, cp.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadsCmd)
}
