// Package phonetic splits training words into consonant and vowel clusters
// and aggregates them into a frequency table.
package phonetic

import "fmt"

// DefaultVowels is the vowel alphabet used when none is configured.
const DefaultVowels = "aeiouy"

// Kind tells consonant clusters from vowel clusters.
type Kind uint8

const (
	Consonant Kind = iota
	Vowel
)

// Other returns the alternating kind.
func (k Kind) Other() Kind {
	if k == Consonant {
		return Vowel
	}
	return Consonant
}

func (k Kind) String() string {
	switch k {
	case Consonant:
		return "consonant"
	case Vowel:
		return "vowel"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Role is the position class of a segment inside its source word.
type Role uint8

const (
	Initial Role = iota
	Medial
	Final
)

func (r Role) String() string {
	switch r {
	case Initial:
		return "initial"
	case Medial:
		return "medial"
	case Final:
		return "final"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Slot keys a group of segments in a Table.
type Slot struct {
	Kind Kind
	Role Role
}

func (s Slot) String() string {
	return s.Role.String() + " " + s.Kind.String()
}

// AllSlots lists every slot in display order.
var AllSlots = []Slot{
	{Kind: Consonant, Role: Initial},
	{Kind: Vowel, Role: Initial},
	{Kind: Consonant, Role: Medial},
	{Kind: Vowel, Role: Medial},
	{Kind: Consonant, Role: Final},
	{Kind: Vowel, Role: Final},
}

// Segment is a maximal run of same-kind letters.
type Segment struct {
	Text string
	Kind Kind
	Role Role
}

// Split breaks a lowercase word into alternating segments and assigns roles.
// A word made of a single segment is reported as Initial.
func Split(word, vowels string) []Segment {
	if word == "" {
		return nil
	}
	set := vowelSet(vowels)
	var segs []Segment
	start := 0
	kind := kindOf(word[0], set)
	for i := 1; i <= len(word); i++ {
		if i < len(word) && kindOf(word[i], set) == kind {
			continue
		}
		segs = append(segs, Segment{Text: word[start:i], Kind: kind})
		if i < len(word) {
			start = i
			kind = kind.Other()
		}
	}
	for i := range segs {
		segs[i].Role = roleAt(i, len(segs))
	}
	return segs
}

func roleAt(i, n int) Role {
	switch {
	case i == 0:
		return Initial
	case i == n-1:
		return Final
	default:
		return Medial
	}
}

type letterSet [26]bool

func vowelSet(vowels string) letterSet {
	var set letterSet
	for i := 0; i < len(vowels); i++ {
		ch := vowels[i]
		if ch >= 'a' && ch <= 'z' {
			set[ch-'a'] = true
		}
	}
	return set
}

func kindOf(ch byte, set letterSet) Kind {
	if ch >= 'a' && ch <= 'z' && set[ch-'a'] {
		return Vowel
	}
	return Consonant
}

func isLowerAlpha(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return false
		}
	}
	return true
}
