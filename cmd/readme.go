package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/profile-stats/internal/render"
)

var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Writes a GitHub user's profile stats into a README",
	Long: `Computes the profile stats of a GitHub user, renders them as Markdown and
replaces the text between the start and end markers of the target file.
With --dry-run the rendered block is printed instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		flags := cmd.Flags()
		if flags.Changed("file") {
			cfg.Readme.Path, _ = flags.GetString("file")
		}
		if flags.Changed("start-marker") {
			cfg.Readme.StartMarker, _ = flags.GetString("start-marker")
		}
		if flags.Changed("end-marker") {
			cfg.Readme.EndMarker, _ = flags.GetString("end-marker")
		}

		results, err := collect(cmd, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to compute stats: %v\n", err)
			os.Exit(1)
		}

		if dryRun, _ := flags.GetBool("dry-run"); dryRun {
			if err := render.Render(os.Stdout, results); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println()
			return
		}

		changed, err := render.PatchFile(cfg.Readme.Path, results, cfg.Readme.StartMarker, cfg.Readme.EndMarker)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if changed {
			logger.Printf("Updated %s.\n", cfg.Readme.Path)
		} else {
			logger.Printf("%s is already up to date.\n", cfg.Readme.Path)
		}
	},
}

func init() {
	rootCmd.AddCommand(readmeCmd)
	addCollectFlags(readmeCmd)
	readmeCmd.Flags().StringP("file", "f", "README.md", "File to update")
	readmeCmd.Flags().String("start-marker", render.DefaultStartMarker, "Marker preceding the stats block")
	readmeCmd.Flags().String("end-marker", render.DefaultEndMarker, "Marker following the stats block")
	readmeCmd.Flags().Bool("dry-run", false, "Print the rendered block instead of writing the file")
}
