package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-jsonio/pkg/valuetree"
)

func (a *app) showCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <file> <root-key>",
		Short: "Print one section as JSON or TOML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore("")
			if err != nil {
				return err
			}
			section, err := store.Section(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}
			if format == "" {
				format = a.cfg.Output.Format
			}
			return writeSection(cmd.OutOrStdout(), section, format, a.cfg.IndentString())
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format: json or toml (default from config)")
	return cmd
}

func writeSection(w io.Writer, section *valuetree.Tree, format, indent string) error {
	switch strings.ToLower(format) {
	case "json":
		if indent == "" {
			indent = valuetree.DefaultIndent
		}
		data, err := valuetree.Encode(section, indent)
		if err != nil {
			return fmt.Errorf("show: encoding json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "toml":
		data, err := toml.Marshal(section.Plain())
		if err != nil {
			return fmt.Errorf("show: encoding toml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("show: unknown format %q", format)
	}
}

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <file> <root-key>",
		Short: "List the field paths and types of a section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore("")
			if err != nil {
				return err
			}
			section, err := store.Section(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("describe: %w", err)
			}
			for _, field := range valuetree.Describe(section) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", field.Path, field.Type)
			}
			return nil
		},
	}
}
