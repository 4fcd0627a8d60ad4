package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/framecull/framecull/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap ~/.framecull with default config and data directories",
	Long: `Initialize framecull's working directory at ~/.framecull/:
config file, dotenv template for the embedding service, and the labeled
training-data layout (keep/ and exclude/).`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := config.FramecullDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("framecull directory ready: %s", dir))

	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printInfo("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	for _, sub := range []string{"keep", "exclude"} {
		p := filepath.Join(cfg.DataDir, sub)
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", p, err)
		}
	}
	printOK("", fmt.Sprintf("Training data layout ready: %s", cfg.DataDir))

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	printOK("", "Dotenv template ready: fill in FRAMECULL_EMBED_* to use your embedding service")
	return nil
}
