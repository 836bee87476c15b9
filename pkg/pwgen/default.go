package pwgen

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/verte-zerg/phonopass/pkg/phonetic"
	"github.com/verte-zerg/phonopass/pkg/weighted"
)

//go:embed corpus/en.txt
var englishCorpus string

var (
	defaultOnce  sync.Once
	defaultTable *phonetic.Table
	defaultGen   *Generator
	defaultErr   error
)

// Corpus returns a copy of the bundled English training words.
func Corpus() []string {
	return strings.Fields(englishCorpus)
}

func loadDefault() {
	defaultTable, defaultErr = phonetic.Extract(Corpus())
	if defaultErr != nil {
		defaultErr = fmt.Errorf("failed to build default table: %w", defaultErr)
		return
	}
	defaultGen, defaultErr = New(defaultTable, WithSource(weighted.CryptoSource{}))
}

// Default returns the table built from the bundled English corpus. It is
// built on first use and shared afterwards.
func Default() (*phonetic.Table, error) {
	defaultOnce.Do(loadDefault)
	return defaultTable, defaultErr
}

// Generate returns a password from the default table using crypto/rand,
// followed by digits random digits. It is safe for concurrent use.
func Generate(digits int) (string, error) {
	defaultOnce.Do(loadDefault)
	if defaultErr != nil {
		return "", defaultErr
	}
	return defaultGen.Generate(digits)
}
