package main

import (
	"github.com/spf13/cobra"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage recipe folders",
}

var folderSaveCmd = &cobra.Command{
	Use:   "save <recipe-id> <folder-name>",
	Short: "Save a recipe into a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return a.SaveToFolder(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	folderCmd.AddCommand(folderSaveCmd)
	rootCmd.AddCommand(folderCmd)
}
