package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asengupta/deepread/internal/api"
)

const exportTimeout = 60 * time.Second

var exportCmd = &cobra.Command{
	Use:   "export <paper-id> [more-ids ...]",
	Short: "Export citations for the given papers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", api.FormatBibTeX, "Citation format: bibtex, ris, or plain")
	exportCmd.Flags().StringP("out", "o", "", "Destination directory (defaults to the configured export dir)")
}

func runExport(cmd *cobra.Command, args []string) error {
	rawFormat, _ := cmd.Flags().GetString("format")
	format, err := normalizeFormat(rawFormat)
	if err != nil {
		return err
	}

	client, cfg, err := apiClient(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("out")
	if dir == "" {
		dir = cfg.Export.Dir
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	export, err := client.ExportCitations(ctx, args, format)
	if err != nil {
		return fmt.Errorf("export citations: %w", err)
	}
	path, err := export.SaveTo(dir)
	if err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	fmt.Printf("Wrote %d citation(s) to %s\n", len(args), path)
	return nil
}

// normalizeFormat maps user spellings onto the backend format names.
func normalizeFormat(format string) (string, error) {
	switch format {
	case api.FormatBibTeX, "bib":
		return api.FormatBibTeX, nil
	case api.FormatRIS:
		return api.FormatRIS, nil
	case api.FormatPlain, "txt", "text":
		return api.FormatPlain, nil
	default:
		return "", fmt.Errorf("unknown format %q: use bibtex, ris, or plain", format)
	}
}
