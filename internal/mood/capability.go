package mood

import (
	"errors"

	"github.com/jdkato/prose/tokenize"
	"github.com/jonreiter/govader"
)

// VaderAnalyzer adapts the VADER lexicon analyzer to Analyzer.
type VaderAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer loads the VADER lexicon. Loading panics inside govader when
// the embedded lexicon is unreadable; that is reported as an error here.
func NewVaderAnalyzer() (a *VaderAnalyzer, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, errors.New("load vader lexicon: lexicon data unavailable")
		}
	}()
	sia := govader.NewSentimentIntensityAnalyzer()
	if sia == nil {
		return nil, errors.New("load vader lexicon: analyzer not created")
	}
	return &VaderAnalyzer{sia: sia}, nil
}

// Polarity implements Analyzer.
func (v *VaderAnalyzer) Polarity(text string) Polarity {
	s := v.sia.PolarityScores(text)
	return Polarity{Compound: s.Compound, Positive: s.Positive, Negative: s.Negative}
}

// NewWordTokenizer returns the Penn Treebank word tokenizer.
func NewWordTokenizer() Tokenizer {
	return tokenize.NewTreebankWordTokenizer()
}
