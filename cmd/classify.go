package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/framecull/framecull/internal/blocklist"
	"github.com/framecull/framecull/internal/classifier"
	"github.com/framecull/framecull/internal/classify"
	"github.com/framecull/framecull/internal/config"
	"github.com/framecull/framecull/internal/embedding"
	"github.com/framecull/framecull/internal/model"
)

// classifyFlags holds flag values for the `framecull classify` command.
type classifyFlags struct {
	stdin     bool
	modelPath string
	device    string
	report    string
}

var classifyCmd = &cobra.Command{
	Use:   "classify [directory]",
	Short: "Classify stills with the current model",
	Long: `Classify images with the trained model and print a JSON array of results to
stdout. Images whose perceptual hash is on the blocklist are filtered out
before classification; per-image embedding failures produce a null label.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	var f classifyFlags
	classifyCmd.Flags().BoolVar(&f.stdin, "stdin", false, "Read image paths from stdin, one per line")
	classifyCmd.Flags().StringVar(&f.modelPath, "model", "", "Trained model path (default from config)")
	classifyCmd.Flags().StringVar(&f.device, "device", "", "Embedding device hint (default from config)")
	classifyCmd.Flags().StringVar(&f.report, "report", "", "Also write a review report.json to this path")
	classifyCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(context.WithValue(cmd.Context(), classifyFlagsKey{}, f))
		return nil
	}
	rootCmd.AddCommand(classifyCmd)
}

type classifyFlagsKey struct{}

func runClassify(cmd *cobra.Command, args []string) error {
	f, ok := cmd.Context().Value(classifyFlagsKey{}).(classifyFlags)
	if !ok {
		return fmt.Errorf("internal error: classify flags missing")
	}

	cfg, cfgErr := config.Load()
	if f.modelPath == "" {
		if cfgErr != nil {
			return fmt.Errorf("no --model and no config: %w\nRun 'framecull init' first.", cfgErr)
		}
		f.modelPath = cfg.ModelPath
	}
	if f.device == "" && cfgErr == nil {
		f.device = cfg.Device
	}

	paths, err := collectPaths(f, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		printWarn("", "no images found")
		fmt.Println("[]")
		return nil
	}

	store := model.NewStore(f.modelPath)
	if !store.Exists() {
		return fmt.Errorf("model file not found: %s\nRun 'framecull train' first.", f.modelPath)
	}
	blob, err := store.ReadModel()
	if err != nil {
		return err
	}
	clf, err := classifier.Decode(blob)
	if err != nil {
		return fmt.Errorf("cannot load model %s: %w", f.modelPath, err)
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

	runner := &classify.Runner{
		Provider:   provider,
		Classifier: clf,
		Log:        log,
	}
	if cfgErr == nil && cfg.BlocklistPath != "" {
		runner.Blocklist = blocklist.New(cfg.BlocklistPath)
	}

	results, err := runner.Run(cmd.Context(), paths)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if f.report != "" {
		if err := classify.WriteReport(f.report, provider.ModelID(), results, nil); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Report written: %s", f.report))
	}
	return nil
}

func collectPaths(f classifyFlags, args []string) ([]string, error) {
	if f.stdin {
		var out []string
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				out = append(out, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("cannot read stdin: %w", err)
		}
		return out, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("specify a directory or use --stdin")
	}
	if _, err := os.Stat(args[0]); err != nil {
		return nil, fmt.Errorf("directory not found: %s", args[0])
	}
	return classify.FindImages(args[0])
}
