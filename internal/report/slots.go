package report

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/phonopass/internal/model"
	"github.com/verte-zerg/phonopass/pkg/phonetic"
)

// WriteTableList prints stored tables, one per row.
func WriteTableList(w io.Writer, tables []model.TableInfo) error {
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, []string{
			t.Name,
			humanize.Comma(int64(t.Words)),
			humanize.Comma(int64(t.Segments)),
			t.Vowels,
			humanize.Time(t.BuiltAt),
			t.Source,
		})
	}
	for _, line := range formatTable([]string{"Name", "Words", "Segments", "Vowels", "Built", "Source"}, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable prints one section per non-empty slot with its top entries.
// top <= 0 prints every entry.
func WriteTable(w io.Writer, table *phonetic.Table, top int) error {
	if _, err := fmt.Fprintf(w, "Words: %s  Vowels: %s\n", humanize.Comma(int64(table.Words())), table.Vowels()); err != nil {
		return err
	}
	for _, slot := range table.Slots() {
		entries := table.Entries(slot.Kind, slot.Role)
		total := table.Total(slot.Kind, slot.Role)
		if _, err := fmt.Fprintf(w, "\n%s (%d distinct, %s observed)\n", slot, len(entries), humanize.Comma(int64(total))); err != nil {
			return err
		}
		shown := entries
		if top > 0 && len(shown) > top {
			shown = shown[:top]
		}
		rows := make([][]string, 0, len(shown))
		for i, e := range shown {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				e.Text,
				humanize.Comma(int64(e.Count)),
				fmt.Sprintf("%.2f%%", 100*float64(e.Count)/float64(total)),
			})
		}
		for _, line := range formatTable([]string{"#", "Segment", "Count", "Share"}, rows, map[int]bool{0: true, 2: true, 3: true}) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteStrength prints the number of distinct passwords and its size in
// bits.
func WriteStrength(w io.Writer, strength *big.Int, digits int) error {
	if strength.Sign() == 0 {
		_, err := fmt.Fprintln(w, "This table cannot complete a password with the current segment range.")
		return err
	}
	// BigComma divides its argument in place.
	bits := Bits(strength)
	_, err := fmt.Fprintf(w, "This configuration can generate %s different passwords (%.1f bits) with %d digits.\n",
		humanize.BigComma(new(big.Int).Set(strength)), bits, digits)
	return err
}

// Bits returns log2(n).
func Bits(n *big.Int) float64 {
	if n.Sign() <= 0 {
		return 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	if !math.IsInf(f, 0) {
		return math.Log2(f)
	}
	// Beyond float64 range: shift down and add the shift back.
	shift := n.BitLen() - 64
	f, _ = new(big.Float).SetInt(new(big.Int).Rsh(n, uint(shift))).Float64()
	return math.Log2(f) + float64(shift)
}
