package phonetic

import "strings"

type extractOptions struct {
	vowels string
	cutoff int
}

// Option configures Extract.
type Option func(*extractOptions)

// WithVowels sets the vowel alphabet. Letters outside it are consonants.
func WithVowels(vowels string) Option {
	return func(o *extractOptions) {
		o.vowels = vowels
	}
}

// WithCutoff keeps only the n most frequent entries of every slot.
// Zero or less keeps everything.
func WithCutoff(n int) Option {
	return func(o *extractOptions) {
		o.cutoff = n
	}
}

type counter struct {
	index   map[string]int
	entries []Entry
}

func (c *counter) add(text string) {
	if i, ok := c.index[text]; ok {
		c.entries[i].Count++
		return
	}
	c.index[text] = len(c.entries)
	c.entries = append(c.entries, Entry{Text: text, Count: 1})
}

// Extract digests a word list into a frequency table. Lines are trimmed;
// blank lines and words with characters outside a-z are skipped.
func Extract(words []string, opts ...Option) (*Table, error) {
	cfg := extractOptions{vowels: DefaultVowels}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateVowels(cfg.vowels); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, &InvalidInputError{Reason: "word list is empty"}
	}

	counters := make(map[Slot]*counter, len(AllSlots))
	processed, skipped := 0, 0
	for _, word := range words {
		word = strings.TrimSpace(word)
		if !isLowerAlpha(word) {
			skipped++
			continue
		}
		for _, seg := range Split(word, cfg.vowels) {
			slot := Slot{Kind: seg.Kind, Role: seg.Role}
			c, ok := counters[slot]
			if !ok {
				c = &counter{index: map[string]int{}}
				counters[slot] = c
			}
			c.add(seg.Text)
		}
		processed++
	}
	if processed == 0 {
		return nil, &InvalidInputError{Reason: "word list contains no lowercase alphabetic words"}
	}

	t := &Table{
		vowels:  cfg.vowels,
		words:   processed,
		skipped: skipped,
		slots:   make(map[Slot][]Entry, len(counters)),
	}
	for slot, c := range counters {
		sortEntries(c.entries)
		t.slots[slot] = c.entries
	}
	return t.Top(cfg.cutoff), nil
}
