package cmd

import (
	"fmt"
	"os"

	"github.com/jmehdipour/user-send/internal/config"
	"github.com/spf13/cobra"
)

var (
	baseDir string
	cfgName string
	rootCmd = &cobra.Command{
		Use:           "user-send",
		Short:         "Publish the demo user list to the event bus",
		SilenceUsage:  true,
		SilenceErrors: true, // Execute prints it once
		RunE:          runSend,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", ".", "directory holding the settings file")
	rootCmd.PersistentFlags().StringVar(&cfgName, "config", config.DefaultFileName, "settings file name (relative to --base-dir) or absolute path")
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(migrateCmd)
}
