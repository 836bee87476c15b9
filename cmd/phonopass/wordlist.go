package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/phonopass/internal/config"
	"github.com/verte-zerg/phonopass/internal/wordfreq"
)

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Download training word lists from wordfreq",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCmd,
	}
	cmd.Flags().StringVar(&wordlistLang, "lang", "", "language code, comma separated list or 'all' (default: en)")
	cmd.Flags().IntVar(&wordlistSize, "size", defaultWordlistSz, "number of words")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite existing files")
	cmd.Flags().BoolVar(&wordlistSave, "save", false, "also build and store a table named after each language")
	return cmd
}

func runWordlistCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if wordlistSize <= 0 {
		return fmt.Errorf("--size must be greater than 0")
	}

	listTypeNormalized := "large"
	wordlistOutDir := config.DefaultWordListDir()
	cacheDir := config.DefaultWordfreqCacheDir()

	spin := spinner.New(spinner.CharSets[13], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " Fetching wordfreq data..."
	spin.Start()
	wheel, err := wordfreq.DownloadLatestWheel(cmd.Context(), cacheDir)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("failed to download wordfreq wheel: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wheel %s (%s)\n", wheel.Filename, humanize.Bytes(uint64(wheel.Size)))
	} else {
		logErrf("Downloaded wheel %s (%s)\n", wheel.Filename, humanize.Bytes(uint64(wheel.Size)))
	}
	langTypes, err := wordfreq.ListLanguageTypes(wheel.Path)
	if err != nil {
		return fmt.Errorf("failed to list languages: %w", err)
	}
	availableLangs := wordfreq.LanguagesFromTypes(langTypes)
	langs, allRequested, err := resolveWordlistLangs(wordlistLang, availableLangs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(wordlistOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, langCode := range langs {
		outPath := config.DefaultWordListPath(langCode)
		if !wordlistForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("word list already exists: %s (use --force to overwrite)", outPath)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to stat word list: %w", err)
			}
		}

		logErrf("Extracting %s word list...\n", langCode)
		selectedType, ok := selectWordlistType(langTypes[langCode], listTypeNormalized)
		if !ok {
			if allRequested {
				logErrf("Skipping %s (no %s word list)\n", langCode, listTypeNormalized)
				continue
			}
			return fmt.Errorf("no %s word list available for %s", listTypeNormalized, langCode)
		}
		if selectedType != listTypeNormalized {
			logErrf("Using %s for %s (no %s word list)\n", selectedType, langCode, listTypeNormalized)
		}
		words, err := wordfreq.ExtractWordlist(wheel.Path, langCode, selectedType, wordlistSize)
		if err != nil {
			if allRequested {
				logErrf("Skipping %s (no usable words): %v\n", langCode, err)
				continue
			}
			return fmt.Errorf("failed to extract %s word list: %w", langCode, err)
		}
		if err := writeWordList(outPath, words); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		logErrf("Wrote %s (%s words)\n", outPath, humanize.Comma(int64(len(words))))

		if wordlistSave {
			table, err := extractTable(words, cfg)
			if err != nil {
				return fmt.Errorf("failed to build %s table: %w", langCode, err)
			}
			if err := saveTable(cmd, langCode, outPath, table); err != nil {
				return err
			}
		}
	}

	if err := wordfreq.WriteAttribution(wheel.Path, wordlistOutDir); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	logErrln("Wrote ATTRIBUTION.txt and LICENSE.txt")
	return nil
}

func resolveWordlistLangs(lang string, available []string) ([]string, bool, error) {
	lang = strings.TrimSpace(strings.ToLower(lang))
	if lang == "" {
		return []string{"en"}, false, nil
	}
	if lang == "all" {
		return append([]string(nil), available...), true, nil
	}
	parts := strings.Split(lang, ",")
	requested := make([]string, 0, len(parts))
	availableSet := make(map[string]struct{}, len(available))
	for _, a := range available {
		availableSet[a] = struct{}{}
	}
	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if _, ok := availableSet[part]; !ok {
			return nil, false, fmt.Errorf("unknown language %q (available: %s)", part, strings.Join(available, ", "))
		}
		requested = append(requested, part)
	}
	if len(requested) == 0 {
		return nil, false, fmt.Errorf("--lang must not be empty")
	}
	return requested, false, nil
}

func selectWordlistType(available map[string]struct{}, desired string) (string, bool) {
	if len(available) == 0 {
		return "", false
	}
	switch desired {
	case "large":
		if _, ok := available["large"]; ok {
			return "large", true
		}
		if _, ok := available["small"]; ok {
			return "small", true
		}
	case "small":
		if _, ok := available["small"]; ok {
			return "small", true
		}
	}
	return "", false
}

func writeWordList(path string, words []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create word list dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "wordlist-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp word list: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, word := range words {
		if _, err := fmt.Fprintln(writer, word); err != nil {
			return fmt.Errorf("failed to write word list: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush word list: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close word list: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write word list: %w", err)
	}
	return nil
}
