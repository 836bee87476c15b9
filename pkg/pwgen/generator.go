// Package pwgen synthesizes pronounceable passwords from a phonetic
// frequency table.
package pwgen

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/phonopass/pkg/phonetic"
	"github.com/verte-zerg/phonopass/pkg/weighted"
)

const (
	// DefaultMinSegments and DefaultMaxSegments bound the number of
	// segments in a password. The count is drawn uniformly from the range.
	DefaultMinSegments = 3
	DefaultMaxSegments = 5
	// DefaultDigitAlphabet is the set digit suffixes are drawn from.
	DefaultDigitAlphabet = "0123456789"
)

// Password is a synthesized pseudo-word with its optional digit suffix.
type Password struct {
	Segments []phonetic.Segment
	Digits   string
}

// Letters returns the pseudo-word without the digit suffix.
func (p Password) Letters() string {
	var b strings.Builder
	for _, seg := range p.Segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

func (p Password) String() string {
	return p.Letters() + p.Digits
}

type config struct {
	src           weighted.Source
	minSegments   int
	maxSegments   int
	digitAlphabet string
}

// Option configures a Generator.
type Option func(*config)

// WithSource sets the randomness source. A *math/rand.Rand is not safe for
// concurrent use; weighted.CryptoSource is.
func WithSource(src weighted.Source) Option {
	return func(c *config) {
		c.src = src
	}
}

// WithSeed uses a math/rand source with a fixed seed for reproducible output.
func WithSeed(seed int64) Option {
	return WithSource(rand.New(rand.NewSource(seed)))
}

// WithSegments bounds the total number of segments per password.
func WithSegments(minSegments, maxSegments int) Option {
	return func(c *config) {
		c.minSegments = minSegments
		c.maxSegments = maxSegments
	}
}

// WithDigitAlphabet sets the characters used for the digit suffix.
func WithDigitAlphabet(alphabet string) Option {
	return func(c *config) {
		c.digitAlphabet = alphabet
	}
}

// Generator draws passwords from a frequency table.
type Generator struct {
	table    *phonetic.Table
	cfg      config
	initial  *weighted.Chooser[phonetic.Segment]
	choosers map[phonetic.Slot]*weighted.Chooser[string]
}

// New prepares a Generator. Without a source option it is seeded from the
// current time, like a fresh math/rand generator.
func New(table *phonetic.Table, opts ...Option) (*Generator, error) {
	if table == nil {
		return nil, fmt.Errorf("frequency table is nil")
	}
	cfg := config{
		minSegments:   DefaultMinSegments,
		maxSegments:   DefaultMaxSegments,
		digitAlphabet: DefaultDigitAlphabet,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.src == nil {
		cfg.src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	g := &Generator{
		table:    table,
		cfg:      cfg,
		choosers: make(map[phonetic.Slot]*weighted.Chooser[string]),
	}
	var initial []weighted.Choice[phonetic.Segment]
	for _, slot := range table.Slots() {
		entries := table.Entries(slot.Kind, slot.Role)
		if slot.Role == phonetic.Initial {
			for _, e := range entries {
				initial = append(initial, weighted.Choice[phonetic.Segment]{
					Item:   phonetic.Segment{Text: e.Text, Kind: slot.Kind, Role: slot.Role},
					Weight: e.Count,
				})
			}
			continue
		}
		choices := make([]weighted.Choice[string], 0, len(entries))
		for _, e := range entries {
			choices = append(choices, weighted.Choice[string]{Item: e.Text, Weight: e.Count})
		}
		chooser, err := weighted.NewChooser(choices)
		if err != nil {
			return nil, fmt.Errorf("failed to index %s segments: %w", slot, err)
		}
		g.choosers[slot] = chooser
	}
	if len(initial) > 0 {
		sort.SliceStable(initial, func(i, j int) bool {
			return initial[i].Weight > initial[j].Weight
		})
		chooser, err := weighted.NewChooser(initial)
		if err != nil {
			return nil, fmt.Errorf("failed to index initial segments: %w", err)
		}
		g.initial = chooser
	}
	return g, nil
}

func validateConfig(cfg config) error {
	if cfg.minSegments < 2 {
		return fmt.Errorf("minimum segment count must be >= 2, got %d", cfg.minSegments)
	}
	if cfg.maxSegments < cfg.minSegments {
		return fmt.Errorf("maximum segment count %d is below minimum %d", cfg.maxSegments, cfg.minSegments)
	}
	if cfg.digitAlphabet == "" {
		return fmt.Errorf("digit alphabet must not be empty")
	}
	seen := map[rune]struct{}{}
	for _, r := range cfg.digitAlphabet {
		if r < '0' || r > '9' {
			return fmt.Errorf("digit alphabet %q must contain only decimal digits", cfg.digitAlphabet)
		}
		if _, ok := seen[r]; ok {
			return fmt.Errorf("digit alphabet %q repeats %q", cfg.digitAlphabet, r)
		}
		seen[r] = struct{}{}
	}
	return nil
}

// Table returns the table the generator samples from.
func (g *Generator) Table() *phonetic.Table {
	return g.table
}

// Next synthesizes one password followed by digits random digits.
func (g *Generator) Next(digits int) (Password, error) {
	if digits < 0 {
		return Password{}, fmt.Errorf("digit count must be >= 0, got %d", digits)
	}
	n := g.cfg.minSegments
	if span := g.cfg.maxSegments - g.cfg.minSegments; span > 0 {
		n += g.cfg.src.Intn(span + 1)
	}
	if g.initial == nil {
		return Password{}, &phonetic.EmptyTableError{Slot: phonetic.Slot{Kind: phonetic.Consonant, Role: phonetic.Initial}}
	}

	segs := make([]phonetic.Segment, 0, n)
	first := g.initial.Pick(g.cfg.src)
	segs = append(segs, first)
	kind := first.Kind
	for i := 1; i < n; i++ {
		kind = kind.Other()
		role := phonetic.Medial
		if i == n-1 {
			role = phonetic.Final
		}
		slot := phonetic.Slot{Kind: kind, Role: role}
		chooser, ok := g.choosers[slot]
		if !ok {
			return Password{}, &phonetic.EmptyTableError{Slot: slot}
		}
		segs = append(segs, phonetic.Segment{Text: chooser.Pick(g.cfg.src), Kind: kind, Role: role})
	}

	var suffix []byte
	if digits > 0 {
		suffix = make([]byte, digits)
		for i := range suffix {
			suffix[i] = g.cfg.digitAlphabet[g.cfg.src.Intn(len(g.cfg.digitAlphabet))]
		}
	}
	return Password{Segments: segs, Digits: string(suffix)}, nil
}

// Generate returns Next as a string.
func (g *Generator) Generate(digits int) (string, error) {
	p, err := g.Next(digits)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}
