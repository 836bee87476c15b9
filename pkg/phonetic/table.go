package phonetic

import (
	"fmt"
	"sort"
)

// Entry is a segment text with its occurrence count within one slot.
type Entry struct {
	Text  string
	Count int
}

// Table aggregates segment counts per slot. It is immutable once built and
// safe for concurrent readers.
type Table struct {
	vowels  string
	words   int
	skipped int
	slots   map[Slot][]Entry
}

// NewTable rebuilds a table from stored slot entries. Entries are ordered by
// count, highest first; ties keep the given order.
func NewTable(vowels string, words int, slots map[Slot][]Entry) (*Table, error) {
	if vowels == "" {
		vowels = DefaultVowels
	}
	if err := validateVowels(vowels); err != nil {
		return nil, err
	}
	t := &Table{vowels: vowels, words: words, slots: make(map[Slot][]Entry, len(slots))}
	total := 0
	for slot, entries := range slots {
		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			if e.Count < 1 {
				return nil, fmt.Errorf("%s segment %q has count %d", slot, e.Text, e.Count)
			}
			if !isLowerAlpha(e.Text) {
				return nil, fmt.Errorf("%s segment %q is not lowercase alphabetic", slot, e.Text)
			}
			if _, ok := seen[e.Text]; ok {
				return nil, fmt.Errorf("%s segment %q is duplicated", slot, e.Text)
			}
			seen[e.Text] = struct{}{}
		}
		if len(entries) == 0 {
			continue
		}
		sorted := append([]Entry(nil), entries...)
		sortEntries(sorted)
		t.slots[slot] = sorted
		total += len(sorted)
	}
	if total == 0 {
		return nil, &InvalidInputError{Reason: "table has no segments"}
	}
	return t, nil
}

// Entries returns the candidates of a slot, most frequent first. The slice
// must not be modified.
func (t *Table) Entries(kind Kind, role Role) []Entry {
	return t.slots[Slot{Kind: kind, Role: role}]
}

// Count returns how often text was observed in the slot.
func (t *Table) Count(text string, kind Kind, role Role) int {
	for _, e := range t.Entries(kind, role) {
		if e.Text == text {
			return e.Count
		}
	}
	return 0
}

// Total returns the number of segments observed in the slot.
func (t *Table) Total(kind Kind, role Role) int {
	sum := 0
	for _, e := range t.Entries(kind, role) {
		sum += e.Count
	}
	return sum
}

// Slots returns the non-empty slots in display order.
func (t *Table) Slots() []Slot {
	out := make([]Slot, 0, len(t.slots))
	for _, slot := range AllSlots {
		if len(t.slots[slot]) > 0 {
			out = append(out, slot)
		}
	}
	return out
}

// Words returns how many training words were digested.
func (t *Table) Words() int {
	return t.words
}

// Skipped returns how many training lines were ignored as unusable.
func (t *Table) Skipped() int {
	return t.skipped
}

// Vowels returns the vowel alphabet the table was built with.
func (t *Table) Vowels() string {
	return t.vowels
}

// KindOf classifies a lowercase letter with the table's vowel alphabet.
func (t *Table) KindOf(ch byte) Kind {
	return kindOf(ch, vowelSet(t.vowels))
}

// Top returns a table keeping only the n most frequent entries of every
// slot. Zero or less returns t itself.
func (t *Table) Top(n int) *Table {
	if n <= 0 {
		return t
	}
	out := &Table{vowels: t.vowels, words: t.words, skipped: t.skipped, slots: make(map[Slot][]Entry, len(t.slots))}
	for slot, entries := range t.slots {
		if len(entries) > n {
			entries = entries[:n]
		}
		out.slots[slot] = entries
	}
	return out
}

// Equal reports whether two tables hold identical slots, counts and order.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.vowels != other.vowels || t.words != other.words || len(t.slots) != len(other.slots) {
		return false
	}
	for slot, entries := range t.slots {
		others := other.slots[slot]
		if len(entries) != len(others) {
			return false
		}
		for i := range entries {
			if entries[i] != others[i] {
				return false
			}
		}
	}
	return true
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
}

func validateVowels(vowels string) error {
	if !isLowerAlpha(vowels) {
		return fmt.Errorf("vowel alphabet %q must be lowercase letters", vowels)
	}
	return nil
}
