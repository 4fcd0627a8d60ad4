package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framecull/framecull/internal/config"
	"github.com/framecull/framecull/internal/dataset"
)

// ingestFlags holds flag values for the `framecull ingest` command.
type ingestFlags struct {
	batch string
	from  string
	data  string
}

var ingestF ingestFlags

var ingestCmd = &cobra.Command{
	Use:   "ingest <corrections.json>",
	Short: "Fold reviewer corrections into the labeled training data",
	Long: `Read a corrections file produced by the review layer and copy each corrected
still from the batch output directory into the labeled dataset. Destination
names are prefixed with the batch identifier so stills from different batches
never collide. Per-item failures are reported but do not abort the batch.

Corrections file format:
  {"corrections": [{"filename": "still_0001.jpg", "newLabel": "keep"}, ...]}`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestF.batch, "batch", "", "Batch identifier prefixed to ingested filenames (required)")
	ingestCmd.Flags().StringVar(&ingestF.from, "from", "", "Batch output directory holding the source stills (required)")
	ingestCmd.Flags().StringVar(&ingestF.data, "data", "", "Labeled dataset root (default from config)")
	_ = ingestCmd.MarkFlagRequired("batch")
	_ = ingestCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, args []string) error {
	if ingestF.data == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("no --data and no config: %w\nRun 'framecull init' first.", err)
		}
		ingestF.data = cfg.DataDir
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read corrections %s: %w", args[0], err)
	}
	var payload struct {
		Corrections []dataset.Correction `json:"corrections"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid corrections JSON %s: %w", args[0], err)
	}
	if len(payload.Corrections) == 0 {
		return fmt.Errorf("no corrections in %s", args[0])
	}

	result, err := dataset.IngestCorrections(payload.Corrections, ingestF.batch, ingestF.from, ingestF.data)
	if err != nil {
		return err
	}

	printSection("Ingest")
	printOK("", countPrinter.Sprintf("%d of %d corrections copied into %s",
		result.Moved, len(payload.Corrections), ingestF.data))
	for _, e := range result.Errors {
		printErr("", e)
	}
	return nil
}
