package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framecull/framecull/internal/config"
	"github.com/framecull/framecull/internal/embedding"
	"github.com/framecull/framecull/internal/eval"
	"github.com/framecull/framecull/internal/train"
)

// trainFlags holds flag values for the `framecull train` command.
type trainFlags struct {
	data   string
	output string
	device string
	dryRun bool
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the keep/exclude classifier from the labeled dataset",
	Long: `Run a full train-evaluate-persist cycle: load the labeled dataset, extract
embeddings, cross-validate, fit a final classifier on the entire dataset and
replace the current model. The previous model is archived first.

With --dry-run nothing is persisted or archived; only metrics are reported.`,
	RunE: runTrain,
}

func init() {
	var f trainFlags
	trainCmd.Flags().StringVar(&f.data, "data", "", "Labeled dataset root (default from config)")
	trainCmd.Flags().StringVar(&f.output, "output", "", "Model output path (default from config)")
	trainCmd.Flags().StringVar(&f.device, "device", "", "Embedding device hint, cpu or cuda (default from config)")
	trainCmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Evaluate only; do not persist or archive anything")
	trainCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(context.WithValue(cmd.Context(), trainFlagsKey{}, f))
		return nil
	}
	rootCmd.AddCommand(trainCmd)
}

type trainFlagsKey struct{}

func runTrain(cmd *cobra.Command, _ []string) error {
	f, ok := cmd.Context().Value(trainFlagsKey{}).(trainFlags)
	if !ok {
		return fmt.Errorf("internal error: train flags missing")
	}
	if err := resolveTrainDefaults(&f); err != nil {
		return err
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
	result, err := orch.Run(ctx, train.Options{
		DataDir:   f.data,
		ModelPath: f.output,
		DryRun:    f.dryRun,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("training timed out after %s; nothing was persisted", train.Timeout)
		}
		return err
	}

	printTrainResult(f, result)
	return nil
}

func resolveTrainDefaults(f *trainFlags) error {
	if f.data != "" && f.output != "" && f.device != "" {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		if f.data == "" || f.output == "" {
			return fmt.Errorf("no --data/--output and no config: %w\nRun 'framecull init' first.", err)
		}
		return nil
	}
	if f.data == "" {
		f.data = cfg.DataDir
	}
	if f.output == "" {
		f.output = cfg.ModelPath
	}
	if f.device == "" {
		f.device = cfg.Device
	}
	return nil
}

// printTrainResult renders the result in the external text protocol: callers
// scrape the "Accuracy:" / "Precision:" / "Recall:" / "F1-Score:" lines with
// the "(+/- std)" suffix.
func printTrainResult(f trainFlags, r *train.Result) {
	printSection("Dataset")
	printOK("", countPrinter.Sprintf("%d keep, %d exclude (%d total)",
		r.Info.KeepCount, r.Info.ExcludeCount, r.Info.TotalImages))
	if len(r.Skipped) > 0 {
		printWarn("", countPrinter.Sprintf("%d images skipped (embedding failed)", len(r.Skipped)))
	}
	if r.Imbalanced {
		printWarn("", fmt.Sprintf("class imbalance: majority/minority ratio %.1f exceeds 2.0", r.BalanceRatio))
	}
	printInfo("", fmt.Sprintf("Data fingerprint: %s", r.Fingerprint))

	printSection(fmt.Sprintf("Cross-Validation (%d-fold)", eval.DefaultFolds))
	fmt.Printf("Accuracy:  %.3f (+/- %.3f)\n", r.Metrics.AccuracyMean, r.Metrics.AccuracyStd)
	fmt.Printf("Precision: %.3f (+/- %.3f)\n", r.Metrics.PrecisionMean, r.Metrics.PrecisionStd)
	fmt.Printf("Recall:    %.3f (+/- %.3f)\n", r.Metrics.RecallMean, r.Metrics.RecallStd)
	fmt.Printf("F1-Score:  %.3f (+/- %.3f)\n", r.Metrics.F1Mean, r.Metrics.F1Std)

	printSection("Holdout Confusion Matrix")
	fmt.Printf("                 Predicted\n")
	fmt.Printf("               Keep  Exclude\n")
	fmt.Printf("Actual Keep    %4d  %4d\n", r.Confusion[0][0], r.Confusion[0][1])
	fmt.Printf("       Exclude %4d  %4d\n", r.Confusion[1][0], r.Confusion[1][1])

	if f.dryRun {
		printInfo("", "Dry run: nothing persisted, nothing archived")
	} else {
		printOK("", fmt.Sprintf("Model saved to %s", f.output))
	}
}
