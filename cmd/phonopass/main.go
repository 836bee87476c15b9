// Package main provides the CLI entrypoint for phonopass.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/phonopass/internal/config"
	"github.com/verte-zerg/phonopass/internal/model"
	"github.com/verte-zerg/phonopass/internal/report"
	"github.com/verte-zerg/phonopass/internal/store"
	"github.com/verte-zerg/phonopass/internal/wordlist"
	"github.com/verte-zerg/phonopass/pkg/phonetic"
	"github.com/verte-zerg/phonopass/pkg/pwgen"
)

const (
	defaultCount      = 100
	defaultWordlistSz = 10000
)

var (
	genCount         int
	genDigits        int
	genColumns       int
	genMinSegments   int
	genMaxSegments   int
	genCutoff        int
	genWorkers       int
	genVowels        string
	genDigitAlphabet string
	genTable         string
	genSeed          int64
	storePath        string
	debug            bool

	wordlistLang  string
	wordlistSize  int
	wordlistForce bool
	wordlistSave  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phonopass [wordlist] [count]",
		Short: "Pronounceable password generator",
		Long: `Generate pronounceable passwords from the letter combinations of a word list.

Without arguments 100 passwords are drawn from the bundled English table.
With a word list the table is rebuilt from that file first.`,
		Args:              cobra.MaximumNArgs(2),
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupLogging,
		RunE:              runGenerateCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&genDigits, "digits", 0, "number of digits appended to each password")
	flags.IntVar(&genMinSegments, "min-segments", pwgen.DefaultMinSegments, "minimum number of letter segments")
	flags.IntVar(&genMaxSegments, "max-segments", pwgen.DefaultMaxSegments, "maximum number of letter segments")
	flags.IntVar(&genCutoff, "cutoff", 0, "keep only the top N segments per slot (0 keeps all)")
	flags.StringVar(&genVowels, "vowels", phonetic.DefaultVowels, "letters treated as vowels")
	flags.StringVar(&genDigitAlphabet, "digit-alphabet", pwgen.DefaultDigitAlphabet, "digits used for the suffix")
	flags.StringVar(&genTable, "table", "", "use a stored table instead of the bundled one")
	flags.Int64Var(&genSeed, "seed", 0, "seed for reproducible output")
	flags.IntVar(&genWorkers, "workers", 0, "parallel generators (default: CPU count, 1 with --seed)")
	flags.StringVar(&storePath, "db", config.DefaultDBPath(), "table store path")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().IntVar(&genColumns, "columns", report.DefaultColumns, "passwords per output row")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTableCmd())
	rootCmd.AddCommand(newStrengthCmd())
	rootCmd.AddCommand(newPickCmd())
	rootCmd.AddCommand(newWordlistCmd())

	return rootCmd
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: os.Getenv("NO_COLOR") != ""})
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
	return nil
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	var wordPath string
	if len(args) > 0 {
		wordPath = args[0]
	}
	count := 0
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("count must be a positive integer, got %q", args[1])
		}
		count = n
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if count > 0 {
		cfg.Count = count
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	table, source, err := resolveTable(ctx, cfg, wordPath)
	if err != nil {
		return err
	}
	log.Debug().Str("source", source).Int("words", table.Words()).Int("count", cfg.Count).Int("workers", cfg.Workers).Msg("generating")

	passwords, err := pwgen.Batch(ctx, table, pwgen.BatchRequest{
		Count:   cfg.Count,
		Digits:  cfg.Digits,
		Workers: cfg.Workers,
		Seed:    cfg.Seed,
		Seeded:  cfg.Seeded,
	}, generatorOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to generate passwords: %w", err)
	}

	out := cmd.OutOrStdout()
	columns := cfg.Columns
	if width := report.TerminalWidth(out); width > 0 {
		columns = report.FitColumns(columns, report.CellWidth(passwords), width)
	} else if !cmd.Flags().Changed("columns") {
		columns = 1
	}
	if err := report.WriteGrid(out, passwords, columns); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadSettings merges the config file into flags the user did not set.
func loadSettings(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	g := fileCfg.Generate
	genCount = defaultCount
	applyIntConfig(cmd, "", &genCount, g.Count)
	applyIntConfig(cmd, "digits", &genDigits, g.Digits)
	applyIntConfig(cmd, "columns", &genColumns, g.Columns)
	applyIntConfig(cmd, "min-segments", &genMinSegments, g.MinSegments)
	applyIntConfig(cmd, "max-segments", &genMaxSegments, g.MaxSegments)
	applyIntConfig(cmd, "cutoff", &genCutoff, g.Cutoff)
	applyIntConfig(cmd, "workers", &genWorkers, g.Workers)
	applyStringConfig(cmd, "vowels", &genVowels, g.Vowels)
	applyStringConfig(cmd, "digit-alphabet", &genDigitAlphabet, g.DigitAlphabet)
	applyStringConfig(cmd, "table", &genTable, g.Table)
	applyStringConfig(cmd, "db", &storePath, fileCfg.Store.Path)

	cfg := model.Config{
		Count:         genCount,
		Digits:        genDigits,
		Columns:       genColumns,
		MinSegments:   genMinSegments,
		MaxSegments:   genMaxSegments,
		Cutoff:        genCutoff,
		Workers:       genWorkers,
		Vowels:        genVowels,
		DigitAlphabet: genDigitAlphabet,
		Table:         genTable,
		Seed:          genSeed,
		Seeded:        cmd.Flags().Changed("seed"),
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
		if cfg.Seeded {
			cfg.Workers = 1
		}
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// resolveTable picks the table source: a word list argument, then a stored
// table, then the bundled corpus.
func resolveTable(ctx context.Context, cfg model.Config, wordPath string) (*phonetic.Table, string, error) {
	switch {
	case wordPath != "":
		words, err := wordlist.LoadWords(wordPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read word list: %w", err)
		}
		table, err := extractTable(words, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build table from %s: %w", wordPath, err)
		}
		return table, wordPath, nil
	case cfg.Table != "":
		st, err := store.Open(storePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open table store: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close table store: %v\n", cerr)
			}
		}()
		table, info, err := st.LoadTable(ctx, cfg.Table)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load table: %w", err)
		}
		if cfg.Vowels != phonetic.DefaultVowels && cfg.Vowels != table.Vowels() {
			return nil, "", fmt.Errorf("--vowels %q does not match table %q, which was built with %q", cfg.Vowels, info.Name, table.Vowels())
		}
		return table.Top(cfg.Cutoff), "table " + info.Name, nil
	case cfg.Cutoff > 0 || cfg.Vowels != phonetic.DefaultVowels:
		table, err := extractTable(pwgen.Corpus(), cfg)
		if err != nil {
			return nil, "", err
		}
		return table, "bundled corpus", nil
	default:
		table, err := pwgen.Default()
		if err != nil {
			return nil, "", err
		}
		return table, "bundled corpus", nil
	}
}

func extractTable(words []string, cfg model.Config) (*phonetic.Table, error) {
	kept, dropped := wordlist.Prepare(words, "")
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("kept", len(kept)).Msg("filtered word list")
	}
	return phonetic.Extract(kept, phonetic.WithVowels(cfg.Vowels), phonetic.WithCutoff(cfg.Cutoff))
}

func generatorOptions(cfg model.Config) []pwgen.Option {
	opts := []pwgen.Option{
		pwgen.WithSegments(cfg.MinSegments, cfg.MaxSegments),
		pwgen.WithDigitAlphabet(cfg.DigitAlphabet),
	}
	if cfg.Seeded {
		opts = append(opts, pwgen.WithSeed(cfg.Seed))
	}
	return opts
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if name != "" && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# phonopass configuration
# Uncomment a value to enable it. CLI flags and arguments override config values.

[generate]
# count = %d              # Passwords printed without a count argument
# digits = 0              # Digits appended to each password
# columns = %d              # Passwords per output row
# min-segments = %d         # Minimum number of letter segments
# max-segments = %d         # Maximum number of letter segments
# cutoff = 0              # Keep only the top N segments per slot (0 keeps all)
# workers = 0             # Parallel generators (0: CPU count)
# vowels = %q        # Letters treated as vowels
# digit-alphabet = %q  # Use "23456789" to avoid 0/O and 1/l
# table = ""              # Stored table to generate from

[store]
# path = %q
`,
		defaultCount,
		report.DefaultColumns,
		pwgen.DefaultMinSegments,
		pwgen.DefaultMaxSegments,
		phonetic.DefaultVowels,
		pwgen.DefaultDigitAlphabet,
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Count <= 0 {
		return fmt.Errorf("count must be > 0")
	}
	if cfg.Digits < 0 {
		return fmt.Errorf("--digits must be >= 0")
	}
	if cfg.Columns <= 0 {
		return fmt.Errorf("--columns must be > 0")
	}
	if cfg.MinSegments < 2 {
		return fmt.Errorf("--min-segments must be >= 2")
	}
	if cfg.MaxSegments < cfg.MinSegments {
		return fmt.Errorf("--max-segments must be >= --min-segments")
	}
	if cfg.Cutoff < 0 {
		return fmt.Errorf("--cutoff must be >= 0")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	if cfg.Vowels == "" {
		return fmt.Errorf("--vowels must not be empty")
	}
	if cfg.DigitAlphabet == "" {
		return fmt.Errorf("--digit-alphabet must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
