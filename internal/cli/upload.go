package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asengupta/deepread/internal/api"
	"github.com/asengupta/deepread/internal/pdfinfo"
)

const (
	uploadTimeout      = 5 * time.Minute
	processingDeadline = 10 * time.Minute
	pollInterval       = 2 * time.Second
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf> [more.pdf ...]",
	Short: "Upload PDFs without opening the UI",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().Bool("wait", false, "Poll until server-side processing finishes")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, _, err := apiClient(cmd)
	if err != nil {
		return err
	}
	wait, _ := cmd.Flags().GetBool("wait")

	for _, path := range args {
		info, err := pdfinfo.Inspect(path)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", path, err)
		}
		fmt.Printf("%s: %d page(s)", path, info.Pages)
		if info.Title != "" {
			fmt.Printf(", %q", info.Title)
		}
		fmt.Println()
		if !info.HasTextLayer {
			fmt.Println("  warning: no text layer found; this looks scanned and may need OCR")
		}

		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		receipt, err := client.UploadPaper(ctx, path)
		cancel()
		if err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}
		fmt.Printf("  accepted as %s (%s)\n", receipt.ID, receipt.Status)

		if wait {
			if err := waitForProcessing(client, receipt.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// waitForProcessing polls the monitor endpoint until the paper reaches a
// terminal status.
func waitForProcessing(client *api.Client, paperID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), processingDeadline)
	defer cancel()

	lastStatus := ""
	for {
		status, err := client.GetProcessingStatus(ctx, paperID)
		if err != nil {
			return fmt.Errorf("poll %s: %w", paperID, err)
		}
		if status.Status != lastStatus {
			fmt.Printf("  %s (%d%%)\n", status.Status, status.Progress)
			lastStatus = status.Status
		}
		switch status.Status {
		case api.StatusCompleted:
			return nil
		case api.StatusFailed:
			return fmt.Errorf("processing failed: %s", status.Message)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for %s after %s", paperID, processingDeadline)
		case <-time.After(pollInterval):
		}
	}
}
