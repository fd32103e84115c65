package commands

import (
	"github.com/spf13/cobra"
)

// NewProfileCommand creates the profile command.
func NewProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <source-file>",
		Short: "Profile a delimited source file",
		Long: `Read a delimited source file and print per-column statistics,
candidate keys, entity classification and the detected grain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)

			tbl, err := loadSource(cfg, args[0])
			if err != nil {
				return err
			}

			prof := analyzeSource(cmd, tbl)
			renderProfile(cmd.OutOrStdout(), prof, tbl.ColumnNames())
			return nil
		},
	}
}
