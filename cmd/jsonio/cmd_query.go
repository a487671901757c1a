package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	jsonio "github.com/goliatone/go-jsonio"
)

func (a *app) queryCmd() *cobra.Command {
	var (
		engine string
		args   map[string]string
	)

	cmd := &cobra.Command{
		Use:   "query <file> <root-key> <expression>",
		Short: "Evaluate an expression against a section",
		Long: "Section fields are top-level variables. section, root_key, path, now, " +
			"args and metadata are always available.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, positional []string) error {
			store, err := a.newStore(engine)
			if err != nil {
				return err
			}
			ruleArgs := make(map[string]any, len(args))
			for key, value := range args {
				ruleArgs[key] = value
			}
			result, err := store.EvaluateWith(cmd.Context(), jsonio.RuleContext{
				Path:    positional[0],
				RootKey: positional[1],
				Args:    ruleArgs,
			}, positional[2])
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatResult(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "expression engine: expr, cel or js (default from config)")
	cmd.Flags().StringToStringVar(&args, "arg", nil, "argument exposed as args.<key> (repeatable)")
	return cmd
}

// formatResult prints strings as is and everything else as compact JSON.
func formatResult(result any) string {
	if text, ok := result.(string); ok {
		return text
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(data)
}
