package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) sectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections <file>",
		Short: "List the root keys of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore("")
			if err != nil {
				return err
			}
			keys, err := store.Sections(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("sections: %w", err)
			}
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <root-key>",
		Short: "Delete a section, keeping the others untouched",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore("")
			if err != nil {
				return err
			}
			if err := store.RemoveSection(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("remove: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s\n", args[1], args[0])
			return nil
		},
	}
}
