package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framecull/framecull/internal/config"
	"github.com/framecull/framecull/internal/embedding"
	"github.com/framecull/framecull/internal/model"
	"github.com/framecull/framecull/internal/train"
)

// compareFlags holds flag values for the `framecull compare` command.
type compareFlags struct {
	data      string
	modelPath string
	device    string
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Dry-run a retrain and compare it against the current model",
	Long: `Evaluate a candidate model on the current dataset without persisting
anything, then compare its cross-validated accuracy against the current
model's recorded metrics and recommend whether a retrain is worth it.`,
	RunE: runCompare,
}

func init() {
	var f compareFlags
	compareCmd.Flags().StringVar(&f.data, "data", "", "Labeled dataset root (default from config)")
	compareCmd.Flags().StringVar(&f.modelPath, "model", "", "Current model path (default from config)")
	compareCmd.Flags().StringVar(&f.device, "device", "", "Embedding device hint (default from config)")
	compareCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(context.WithValue(cmd.Context(), compareFlagsKey{}, f))
		return nil
	}
	rootCmd.AddCommand(compareCmd)
}

type compareFlagsKey struct{}

func runCompare(cmd *cobra.Command, _ []string) error {
	f, ok := cmd.Context().Value(compareFlagsKey{}).(compareFlags)
	if !ok {
		return fmt.Errorf("internal error: compare flags missing")
	}

	cfg, cfgErr := config.Load()
	if f.data == "" || f.modelPath == "" {
		if cfgErr != nil {
			return fmt.Errorf("no --data/--model and no config: %w\nRun 'framecull init' first.", cfgErr)
		}
		if f.data == "" {
			f.data = cfg.DataDir
		}
		if f.modelPath == "" {
			f.modelPath = cfg.ModelPath
		}
	}
	if f.device == "" && cfgErr == nil {
		f.device = cfg.Device
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	embCfg, err := embedding.LoadConfig(f.device)
	if err != nil {
		return err
	}
	provider, err := embedding.NewFromConfig(embCfg)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), train.Timeout)
	defer cancel()

	orch := train.New(provider, log)
	cmp, err := orch.Compare(ctx, f.data, model.MetadataPath(f.modelPath))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("compare timed out after %s", train.Timeout)
		}
		return err
	}

	printSection("Compare")
	if cmp.CurrentAccuracy != nil {
		printInfo("", fmt.Sprintf("Current accuracy: %.3f", *cmp.CurrentAccuracy))
	} else {
		printMiss("", "Current accuracy: no recorded metrics")
	}
	printInfo("", fmt.Sprintf("Candidate accuracy: %.3f (+/- %.3f)",
		cmp.NewMetrics.AccuracyMean, cmp.NewMetrics.AccuracyStd))
	if cmp.ImprovementPct != nil {
		printInfo("", fmt.Sprintf("Improvement: %+.1f%%", *cmp.ImprovementPct))
	}

	switch cmp.Recommendation {
	case train.AdviceRetrain, train.AdviceNoBaseline:
		printOK("", cmp.Recommendation)
	case train.AdviceKeepCurrent:
		printWarn("", cmp.Recommendation)
	default:
		printInfo("", cmp.Recommendation)
	}
	return nil
}
