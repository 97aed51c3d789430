package layout

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/matzehuels/tavola/pkg/catalog"
)

// Built-in sort keys. Any other key names a metadata column.
const (
	SortAlphabetical = "alphabetical"
	SortRandom       = "random"
	SortNatural      = "natural_name"
	SortNone         = "none"
)

// IsBuiltinKey reports whether key is one of the built-in sort keys.
func IsBuiltinKey(key string) bool {
	switch key {
	case SortAlphabetical, SortRandom, SortNatural, SortNone:
		return true
	}
	return false
}

// SortOption configures Sort.
type SortOption func(*sorter)

// WithSeed makes random keys reproducible.
func WithSeed(seed uint64) SortOption {
	return func(s *sorter) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

type sorter struct {
	rng  *rand.Rand
	fold cases.Caser
}

// Sort orders items by a primary key, then a secondary key, then natural
// name order, and returns a new slice. Items are tagged with their primary
// group when the primary key is a metadata column.
//
// Missing or empty metadata values sort after every defined value; numeric
// values sort before text. A random primary key without a secondary key
// shuffles the whole collection.
func Sort(items []catalog.Item, primary, secondary string, opts ...SortOption) []catalog.Item {
	s := &sorter{fold: cases.Fold()}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	primary = strings.TrimSpace(primary)
	secondary = strings.TrimSpace(secondary)
	if primary == "" || primary == SortNone || (!IsBuiltinKey(primary) && !hasColumn(items, primary)) {
		primary = SortAlphabetical
	}
	if secondary == SortNone {
		secondary = ""
	}

	grouped := !IsBuiltinKey(primary)
	out := make([]catalog.Item, len(items))
	for i, it := range items {
		group := ""
		if grouped {
			group, _ = it.Meta.Value(primary)
		}
		out[i] = it.WithGroup(group)
	}

	if primary == SortRandom && secondary == "" {
		s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	type keyed struct {
		item    catalog.Item
		p, s, n sortKey
	}
	ks := make([]keyed, len(out))
	for i, it := range out {
		ks[i] = keyed{item: it, p: s.key(it, primary), n: s.natural(it.Name)}
		if secondary != "" {
			ks[i].s = s.key(it, secondary)
		}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		if c := a.p.compare(b.p); c != 0 {
			return c
		}
		if c := a.s.compare(b.s); c != 0 {
			return c
		}
		return a.n.compare(b.n)
	})
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}

func hasColumn(items []catalog.Item, col string) bool {
	for _, it := range items {
		if _, ok := it.Meta[col]; ok {
			return true
		}
	}
	return false
}

// Key kinds, in sort order.
const (
	kindNumber = iota
	kindText
	kindTokens
	kindMissing
)

type token struct {
	digits bool
	text   string // folded text, or digits with leading zeros removed
}

type sortKey struct {
	kind   int
	num    float64
	text   string
	tokens []token
}

func (a sortKey) compare(b sortKey) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case kindNumber:
		return cmp.Compare(a.num, b.num)
	case kindText:
		return strings.Compare(a.text, b.text)
	case kindTokens:
		return compareTokens(a.tokens, b.tokens)
	}
	return 0
}

func (s *sorter) key(it catalog.Item, key string) sortKey {
	switch key {
	case SortAlphabetical:
		return sortKey{kind: kindText, text: s.fold.String(it.Name)}
	case SortNatural:
		return s.natural(it.Name)
	case SortRandom:
		return sortKey{kind: kindNumber, num: s.rng.Float64()}
	}
	v, ok := it.Meta.Value(key)
	if !ok {
		return sortKey{kind: kindMissing}
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) {
		return sortKey{kind: kindNumber, num: f}
	}
	return sortKey{kind: kindText, text: s.fold.String(v)}
}

// natural splits name into digit and non-digit runs so "img2" sorts before
// "img10".
func (s *sorter) natural(name string) sortKey {
	var toks []token
	runes := []rune(name)
	for i := 0; i < len(runes); {
		j := i
		digits := unicode.IsDigit(runes[i])
		for j < len(runes) && unicode.IsDigit(runes[j]) == digits {
			j++
		}
		run := string(runes[i:j])
		if digits {
			trimmed := strings.TrimLeft(run, "0")
			if trimmed == "" {
				trimmed = "0"
			}
			toks = append(toks, token{digits: true, text: trimmed})
		} else {
			toks = append(toks, token{text: s.fold.String(run)})
		}
		i = j
	}
	return sortKey{kind: kindTokens, tokens: toks}
}

func compareTokens(a, b []token) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		x, y := a[i], b[i]
		switch {
		case x.digits && y.digits:
			if c := cmp.Compare(len(x.text), len(y.text)); c != 0 {
				return c
			}
			if c := strings.Compare(x.text, y.text); c != 0 {
				return c
			}
		case x.digits:
			return -1
		case y.digits:
			return 1
		default:
			if c := strings.Compare(x.text, y.text); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(a), len(b))
}
