package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/phonopass/internal/model"
	"github.com/verte-zerg/phonopass/internal/report"
	"github.com/verte-zerg/phonopass/internal/store"
	"github.com/verte-zerg/phonopass/internal/wordlist"
	"github.com/verte-zerg/phonopass/pkg/phonetic"
	"github.com/verte-zerg/phonopass/pkg/pwgen"
)

var (
	tableName     string
	tableTop      int
	tableWordlist string
)

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage stored frequency tables",
	}
	cmd.AddCommand(newTableBuildCmd())
	cmd.AddCommand(newTableListCmd())
	cmd.AddCommand(newTableShowCmd())
	cmd.AddCommand(newTableRmCmd())
	return cmd
}

func newTableBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <wordlist>",
		Short: "Build a table from a word list and store it",
		Args:  cobra.ExactArgs(1),
		RunE:  runTableBuildCmd,
	}
	cmd.Flags().StringVar(&tableName, "name", "", "table name (default: word list file name)")
	return cmd
}

func runTableBuildCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	name := tableName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	words, err := wordlist.LoadWords(path)
	if err != nil {
		return fmt.Errorf("failed to read word list: %w", err)
	}
	table, err := extractTable(words, cfg)
	if err != nil {
		return fmt.Errorf("failed to build table from %s: %w", path, err)
	}
	return saveTable(cmd, name, path, table)
}

func saveTable(cmd *cobra.Command, name, source string, table *phonetic.Table) error {
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open table store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close table store: %v\n", cerr)
		}
	}()
	if err := st.SaveTable(cmd.Context(), name, source, table); err != nil {
		return fmt.Errorf("failed to save table: %w", err)
	}
	segments := 0
	for _, slot := range table.Slots() {
		segments += len(table.Entries(slot.Kind, slot.Role))
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved table %q from %s words (%s segments)\n",
		name, humanize.Comma(int64(table.Words())), humanize.Comma(int64(segments)))
	return err
}

func newTableListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tables",
		Args:  cobra.NoArgs,
		RunE:  runTableListCmd,
	}
}

func runTableListCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadSettings(cmd); err != nil {
		return err
	}
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open table store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close table store: %v\n", cerr)
		}
	}()
	tables, err := st.ListTables(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	if len(tables) == 0 {
		logErrln("No stored tables. Build one with: phonopass table build <wordlist> --name <name>")
		return nil
	}
	return report.WriteTableList(cmd.OutOrStdout(), tables)
}

func newTableShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show the segments of a table",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTableShowCmd,
	}
	cmd.Flags().IntVar(&tableTop, "top", 10, "entries shown per slot (0 shows all)")
	cmd.Flags().StringVar(&tableWordlist, "wordlist", "", "build the table from a word list instead")
	return cmd
}

func runTableShowCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Table = args[0]
	}
	table, source, err := resolveTable(cmd.Context(), cfg, tableWordlist)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Table: %s\n", source); err != nil {
		return err
	}
	if err := report.WriteTable(out, table, tableTop); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	return writeStrength(cmd, table, cfg)
}

func writeStrength(cmd *cobra.Command, table *phonetic.Table, cfg model.Config) error {
	gen, err := pwgen.New(table, generatorOptions(cfg)...)
	if err != nil {
		return err
	}
	return report.WriteStrength(cmd.OutOrStdout(), gen.Strength(cfg.Digits), cfg.Digits)
}

func newTableRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a stored table",
		Args:  cobra.ExactArgs(1),
		RunE:  runTableRmCmd,
	}
}

func runTableRmCmd(cmd *cobra.Command, args []string) error {
	if _, err := loadSettings(cmd); err != nil {
		return err
	}
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open table store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close table store: %v\n", cerr)
		}
	}()
	if err := st.DeleteTable(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted table %q\n", args[0])
	return err
}
