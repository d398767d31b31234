package news

import (
	"fmt"
	"regexp"

	"github.com/tradelog/tradelog/internal/config"
)

type hint struct {
	symbol string
	rx     *regexp.Regexp
}

// Tagger scans article text for ticker symbols. The hint table is ordered,
// so tagged symbols come out in table order with no duplicates.
type Tagger struct {
	hints []hint
}

func NewTagger(hints []config.CoinHint) (*Tagger, error) {
	t := &Tagger{hints: make([]hint, 0, len(hints))}
	for _, h := range hints {
		rx, err := regexp.Compile("(?i)" + h.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile coin hint %s: %w", h.Symbol, err)
		}
		t.hints = append(t.hints, hint{symbol: h.Symbol, rx: rx})
	}
	return t, nil
}

// Tag returns the symbols whose patterns match the text. A text with no
// matches yields an empty, non-nil slice.
func (t *Tagger) Tag(text string) []string {
	coins := []string{}
	for _, h := range t.hints {
		if h.rx.MatchString(text) {
			coins = append(coins, h.symbol)
		}
	}
	return coins
}
