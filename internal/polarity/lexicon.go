// Package polarity provides the polarity oracles the pipeline scores text
// with: an embedded English word lexicon, a gRPC client for a remote scorer
// and a Redis-backed cache in front of either.
//
// Every scorer returns a score in [-1, 1]. Text without any known word
// scores exactly 0.
package polarity

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
)

//go:embed lexicon.tsv
var embeddedLexicon string

// ErrLexicon is returned for a lexicon file that cannot be parsed.
var ErrLexicon = errors.New("invalid lexicon")

// negationFactor flips and dampens the word after a negator.
const negationFactor = -0.5

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true, "hardly": true,
	"dont": true, "doesnt": true, "didnt": true, "isnt": true, "wasnt": true,
	"arent": true, "werent": true, "cant": true, "cannot": true, "wont": true,
}

var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"so":         1.2,
	"extremely":  1.5,
	"incredibly": 1.5,
	"absolutely": 1.4,
	"totally":    1.3,
	"quite":      1.1,
	"pretty":     1.1,
	"slightly":   0.5,
	"somewhat":   0.7,
	"bit":        0.6,
}

// Lexicon scores text by averaging the polarity of its known words.
// It is safe for concurrent use.
type Lexicon struct {
	words map[string]float64
}

// NewLexicon returns the scorer backed by the embedded English lexicon.
func NewLexicon() *Lexicon {
	words, err := ParseLexicon(strings.NewReader(embeddedLexicon))
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return &Lexicon{words: words}
}

// LoadLexicon returns the embedded lexicon extended with the entries of the
// file at path. File entries win over embedded ones.
func LoadLexicon(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLexicon, err)
	}
	defer f.Close()

	extra, err := ParseLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l := NewLexicon()
	for w, s := range extra {
		l.words[w] = s
	}
	return l, nil
}

// ParseLexicon reads tab-separated "word\tscore" lines. Blank lines and
// lines starting with '#' are skipped. Scores must lie in [-1, 1].
func ParseLexicon(r io.Reader) (map[string]float64, error) {
	words := make(map[string]float64, 256)
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		word, raw, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: want word<TAB>score", ErrLexicon, n)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(score) || score < -1 || score > 1 {
			return nil, fmt.Errorf("%w: line %d: score %q not in [-1, 1]", ErrLexicon, n, raw)
		}
		words[strings.ToLower(strings.TrimSpace(word))] = score
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLexicon, err)
	}
	return words, nil
}

// Len returns the number of known words.
func (l *Lexicon) Len() int {
	return len(l.words)
}

// Score returns the mean polarity of the known words in text. A negator
// or intensifier modifies the known word directly after it.
func (l *Lexicon) Score(_ context.Context, text string) (float64, error) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var (
		sum    float64
		scored int
		factor = 1.0
		negate bool
	)
	for _, tok := range tokens {
		if negators[tok] {
			negate = true
			continue
		}
		if f, ok := intensifiers[tok]; ok {
			factor *= f
			continue
		}

		score, ok := l.words[tok]
		if ok {
			score *= factor
			if negate {
				score *= negationFactor
			}
			sum += clamp(score)
			scored++
		}
		factor, negate = 1.0, false
	}

	if scored == 0 {
		return 0, nil
	}
	return clamp(sum / float64(scored)), nil
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
