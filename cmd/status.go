package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framecull/framecull/internal/blocklist"
	"github.com/framecull/framecull/internal/config"
	"github.com/framecull/framecull/internal/dataset"
	"github.com/framecull/framecull/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current model, dataset and blocklist state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w\nRun 'framecull init' first.", err)
	}

	printSection("Model")
	store := model.NewStore(cfg.ModelPath)
	if !store.Exists() {
		printMiss("", fmt.Sprintf("no model at %s", cfg.ModelPath))
	} else {
		printOK("", cfg.ModelPath)
		meta, err := store.ReadMetadata()
		switch {
		case err != nil:
			printErr("", fmt.Sprintf("metadata unreadable: %v", err))
		case meta == nil:
			printMiss("", "no metadata recorded")
		default:
			printInfo("", fmt.Sprintf("version %d, trained %s, data %s",
				meta.Version, meta.Timestamp, meta.DataHash))
			printInfo("", fmt.Sprintf("accuracy %.3f (+/- %.3f) over %d images",
				meta.Metrics.AccuracyMean, meta.Metrics.AccuracyStd, meta.TrainingInfo.TotalImages))
		}
		if entries, err := os.ReadDir(store.ArchiveDir()); err == nil {
			printInfo("", countPrinter.Sprintf("%d archived files", len(entries)))
		}
	}

	printSection("Training Data")
	ds, err := dataset.Load(cfg.DataDir)
	if err != nil {
		printMiss("", err.Error())
	} else {
		printOK("", countPrinter.Sprintf("%d keep, %d exclude in %s",
			ds.KeepCount(), ds.ExcludeCount(), cfg.DataDir))
	}

	printSection("Blocklist")
	entries, err := blocklist.New(cfg.BlocklistPath).Entries()
	switch {
	case err != nil:
		printErr("", err.Error())
	case len(entries) == 0:
		printMiss("", "empty")
	default:
		printOK("", countPrinter.Sprintf("%d entries in %s", len(entries), cfg.BlocklistPath))
	}
	return nil
}
