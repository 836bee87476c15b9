package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var digitless = regexp.MustCompile(`^[a-z]{2,}$`)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("NO_COLOR", "1")
	return dir
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

const trainingWords = "banana\ncabin\nrobot\nlemon\ntiger\nstrength\naudio\npotato\nsilver\nwonder\n"

func TestGenerateFromWordListWithCount(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "words.txt")
	writeFile(t, path, trainingWords)

	out, _, err := runCLI(t, path, "5")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got := lines(out)
	if len(got) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(got), out)
	}
	for _, pw := range got {
		if !digitless.MatchString(pw) {
			t.Fatalf("unexpected password %q", pw)
		}
	}
}

func TestGenerateDefaultTable(t *testing.T) {
	setupEnv(t)
	out, _, err := runCLI(t)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := lines(out); len(got) != defaultCount {
		t.Fatalf("expected %d lines, got %d", defaultCount, len(got))
	}
}

func TestGenerateGridAndDigits(t *testing.T) {
	setupEnv(t)
	out, _, err := runCLI(t, "--digits", "2", "--columns", "4", "--seed", "7")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	rows := lines(out)
	if len(rows) != 25 {
		t.Fatalf("expected 25 rows, got %d", len(rows))
	}
	pattern := regexp.MustCompile(`^[a-z]+[0-9]{2}$`)
	for _, row := range rows {
		fields := strings.Fields(row)
		if len(fields) != 4 {
			t.Fatalf("expected 4 passwords per row, got %q", row)
		}
		for _, pw := range fields {
			if !pattern.MatchString(pw) {
				t.Fatalf("unexpected password %q", pw)
			}
		}
		if strings.HasSuffix(row, " ") {
			t.Fatalf("row has trailing padding: %q", row)
		}
	}
}

func TestGenerateSeedIsReproducible(t *testing.T) {
	setupEnv(t)
	first, _, err := runCLI(t, "--seed", "42")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	second, _, err := runCLI(t, "--seed", "42")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output for the same seed")
	}
}

func TestGenerateErrors(t *testing.T) {
	dir := setupEnv(t)
	empty := filepath.Join(dir, "empty.txt")
	writeFile(t, empty, "123\nco-op\n")
	blank := filepath.Join(dir, "blank.txt")
	writeFile(t, blank, "\n\n")
	vowelless := filepath.Join(dir, "hmm.txt")
	writeFile(t, vowelless, "hmm\nbrr\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing file", args: []string{filepath.Join(dir, "missing.txt")}, want: "failed to read word list"},
		{name: "no usable words", args: []string{empty}, want: "invalid training input"},
		{name: "blank file", args: []string{blank}, want: "invalid training input: word list is empty"},
		{name: "incomplete table", args: []string{vowelless, "3"}, want: "frequency table has no"},
		{name: "bad count", args: []string{vowelless, "abc"}, want: "count must be a positive integer"},
		{name: "bad segments", args: []string{"--min-segments", "4", "--max-segments", "3"}, want: "--max-segments"},
		{name: "too many args", args: []string{"a", "1", "b"}, want: "accepts at most 2 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			if out != "" {
				t.Fatalf("expected no output on failure, got %q", out)
			}
		})
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := setupEnv(t)
	writeFile(t, filepath.Join(dir, "config", "phonopass", "config.toml"), "[generate]\ncount = 7\ndigits = 3\n")

	out, _, err := runCLI(t)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got := lines(out)
	if len(got) != 7 {
		t.Fatalf("expected 7 lines from config count, got %d", len(got))
	}
	if !regexp.MustCompile(`[0-9]{3}$`).MatchString(got[0]) {
		t.Fatalf("expected 3 digits from config, got %q", got[0])
	}

	out, _, err = runCLI(t, "--digits", "0", "--seed", "1")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if first := lines(out)[0]; !digitless.MatchString(first) {
		t.Fatalf("expected flag to override config digits, got %q", first)
	}
}

func TestTableLifecycle(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "words.txt")
	writeFile(t, path, trainingWords)
	db := filepath.Join(dir, "tables.db")

	out, _, err := runCLI(t, "table", "build", path, "--name", "demo", "--db", db)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(out, `Saved table "demo" from 10 words`) {
		t.Fatalf("unexpected build output %q", out)
	}

	out, _, err = runCLI(t, "table", "list", "--db", db)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "demo") {
		t.Fatalf("expected demo in list:\n%s", out)
	}

	out, _, err = runCLI(t, "table", "show", "demo", "--db", db, "--top", "2")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"Table: table demo", "initial consonant", "different passwords"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in show output:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, "table", "show", "demo", "--db", db, "--cutoff", "1", "--min-segments", "3", "--max-segments", "3")
	if err != nil {
		t.Fatalf("show with cutoff failed: %v", err)
	}
	if !strings.Contains(out, "can generate 2 different passwords (1.0 bits) with 0 digits") {
		t.Fatalf("expected cutoff applied to stored table:\n%s", out)
	}

	if _, _, err := runCLI(t, "--table", "demo", "--db", db, "--vowels", "aeiou"); err == nil || !strings.Contains(err.Error(), "does not match table") {
		t.Fatalf("expected vowel mismatch error, got %v", err)
	}

	out, _, err = runCLI(t, "--table", "demo", "--db", db, "--seed", "3", "--max-segments", "3")
	if err != nil {
		t.Fatalf("generate from stored table failed: %v", err)
	}
	if got := lines(out); len(got) != defaultCount {
		t.Fatalf("expected %d passwords, got %d", defaultCount, len(got))
	}

	if _, _, err := runCLI(t, "table", "rm", "demo", "--db", db); err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	if _, _, err := runCLI(t, "--table", "demo", "--db", db); err == nil || !strings.Contains(err.Error(), "table not found") {
		t.Fatalf("expected missing table error, got %v", err)
	}
}

func TestStrengthCommand(t *testing.T) {
	setupEnv(t)
	out, _, err := runCLI(t, "strength", "--digits", "2", "--samples", "500", "--seed", "5")
	if err != nil {
		t.Fatalf("strength failed: %v", err)
	}
	for _, want := range []string{"different passwords", "with 2 digits", "Password length"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestStrengthBitsForKnownTable(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "words.txt")
	writeFile(t, path, "cat\ndog\nbee\n")

	// 3 initial consonants, 2 medial vowels, 2 final consonants, 10^3 suffixes.
	want := "can generate 12,000 different passwords (13.6 bits) with 3 digits"
	args := []string{"--min-segments", "3", "--max-segments", "3", "--digits", "3"}

	out, _, err := runCLI(t, append([]string{"strength", path, "--samples", "0"}, args...)...)
	if err != nil {
		t.Fatalf("strength failed: %v", err)
	}
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in strength output:\n%s", want, out)
	}

	out, _, err = runCLI(t, append([]string{"table", "show", "--wordlist", path}, args...)...)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in show output:\n%s", want, out)
	}
}

func TestResolveWordlistLangs(t *testing.T) {
	available := []string{"de", "en", "fr"}
	langs, all, err := resolveWordlistLangs("", available)
	if err != nil || all || len(langs) != 1 || langs[0] != "en" {
		t.Fatalf("unexpected default langs %v %v %v", langs, all, err)
	}
	langs, all, err = resolveWordlistLangs("all", available)
	if err != nil || !all || len(langs) != 3 {
		t.Fatalf("unexpected all langs %v %v %v", langs, all, err)
	}
	langs, _, err = resolveWordlistLangs(" DE, fr ", available)
	if err != nil || len(langs) != 2 || langs[0] != "de" || langs[1] != "fr" {
		t.Fatalf("unexpected list langs %v %v", langs, err)
	}
	if _, _, err := resolveWordlistLangs("xx", available); err == nil {
		t.Fatalf("expected unknown language error")
	}
}

func TestSelectWordlistType(t *testing.T) {
	small := map[string]struct{}{"small": {}}
	if got, ok := selectWordlistType(small, "large"); !ok || got != "small" {
		t.Fatalf("expected small fallback, got %q %v", got, ok)
	}
	if _, ok := selectWordlistType(nil, "large"); ok {
		t.Fatalf("expected no type for empty set")
	}
}

func TestWriteWordList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists", "de.txt")
	if err := writeWordList(path, []string{"haus", "baum"}); err != nil {
		t.Fatalf("writeWordList failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "haus\nbaum\n" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "config", "phonopass", "config.toml")
	writeFile(t, path, defaultConfigTemplate())
	if _, _, err := runCLI(t, "--seed", "1", "x-missing-ignored"); err == nil {
		t.Fatalf("expected missing word list error")
	}
	out, _, err := runCLI(t, "--seed", "1")
	if err != nil {
		t.Fatalf("commented template should load cleanly: %v", err)
	}
	if len(lines(out)) != defaultCount {
		t.Fatalf("unexpected output size %d", len(lines(out)))
	}
}
