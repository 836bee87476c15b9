// Package model defines shared data structures.
package model

import "time"

// Config defines generation settings after flags and the config file are
// merged.
type Config struct {
	Count         int
	Digits        int
	Columns       int
	MinSegments   int
	MaxSegments   int
	Cutoff        int
	Workers       int
	Vowels        string
	DigitAlphabet string
	Table         string
	Seed          int64
	Seeded        bool
}

// TableInfo describes a stored frequency table.
type TableInfo struct {
	ID       int64
	Name     string
	Vowels   string
	Words    int
	Segments int
	Source   string
	BuiltAt  time.Time
}
