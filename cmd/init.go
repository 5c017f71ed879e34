package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/profile-stats/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Writes a configuration file with the default settings",
	Long: `Writes a YAML configuration file holding the default settings, to the path
given with --config or to .profile-stats.yaml. An existing file is kept unless
--force is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("config")
		user, _ := cmd.Flags().GetString("user")
		force, _ := cmd.Flags().GetBool("force")

		written, err := writeDefaultConfig(path, user, force)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created config: %s\n", written)
	},
}

// writeDefaultConfig saves the default configuration, with user filled in, and
// returns the path it was written to.
func writeDefaultConfig(path, user string, force bool) (string, error) {
	if path == "" {
		path = config.DefaultPath
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists, use --force to overwrite it", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.User = user
	if err := cfg.Save(path); err != nil {
		return "", fmt.Errorf("failed to save config: %w", err)
	}
	return path, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("user", "u", "", "GitHub user name stored in the file")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
