package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framecull/framecull/internal/blocklist"
	"github.com/framecull/framecull/internal/config"
)

var blocklistCmd = &cobra.Command{
	Use:   "blocklist",
	Short: "Manage the perceptual-hash blocklist of rejected stills",
	Long: `The blocklist permanently rejects stills by perceptual hash, so renamed or
near-identical copies of a rejected frame are filtered out of future
classification runs regardless of the model.`,
}

var blocklistDescription string
var blocklistRoot string

var blocklistAddCmd = &cobra.Command{
	Use:   "add <image>",
	Short: "Add an image to the blocklist",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocklistAdd,
}

var blocklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blocklist entries",
	RunE:  runBlocklistList,
}

var blocklistCheckCmd = &cobra.Command{
	Use:   "check <image>",
	Short: "Check whether an image's hash is blocklisted",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlocklistCheck,
}

func init() {
	blocklistAddCmd.Flags().StringVarP(&blocklistDescription, "message", "m", "", "Why this still is rejected")
	blocklistAddCmd.Flags().StringVar(&blocklistRoot, "root", "", "Record the source path relative to this root")
	blocklistCmd.AddCommand(blocklistAddCmd, blocklistListCmd, blocklistCheckCmd)
	rootCmd.AddCommand(blocklistCmd)
}

func openBlocklist() (*blocklist.Blocklist, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'framecull init' first.", err)
	}
	return blocklist.New(cfg.BlocklistPath), nil
}

func runBlocklistAdd(_ *cobra.Command, args []string) error {
	bl, err := openBlocklist()
	if err != nil {
		return err
	}
	hash, err := bl.Add(args[0], blocklistDescription, blocklistRoot)
	if err != nil {
		if errors.Is(err, blocklist.ErrDuplicateEntry) {
			printWarn("", err.Error())
			return nil
		}
		return err
	}
	printOK("", fmt.Sprintf("Blocklisted %s (hash %s)", args[0], hash))
	return nil
}

func runBlocklistList(_ *cobra.Command, _ []string) error {
	bl, err := openBlocklist()
	if err != nil {
		return err
	}
	entries, err := bl.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printMiss("", "blocklist is empty")
		return nil
	}
	printSection(countPrinter.Sprintf("Blocklist (%d entries)", len(entries)))
	for _, e := range entries {
		desc := e.Description
		if desc == "" {
			desc = "(no description)"
		}
		printInfo(e.Hash, fmt.Sprintf("%s: %s (added %s)", e.Source, desc, e.AddedAt))
	}
	return nil
}

func runBlocklistCheck(_ *cobra.Command, args []string) error {
	bl, err := openBlocklist()
	if err != nil {
		return err
	}
	hash, blocked, err := bl.ContainsImage(args[0])
	if err != nil {
		return err
	}
	if blocked {
		printOK("", fmt.Sprintf("%s is blocklisted (hash %s)", args[0], hash))
	} else {
		printMiss("", fmt.Sprintf("%s is not blocklisted (hash %s)", args[0], hash))
	}
	return nil
}
