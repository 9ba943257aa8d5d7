// Package view computes what the bank's screens display. Every function is a
// pure function of a bank snapshot; writing the result to a surface is the
// job of a Renderer.
package view

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/models"
)

const (
	NoHoldingsNotice     = "You do not own any crypto yet."
	NoTradableAssets     = "-- no cryptos available --"
	NoPriceableAssets    = "-- no cryptos --"
	PriceNoteUnavailable = "Price: (set by admin)"
)

// BalanceLine is one currency the session holds.
type BalanceLine struct {
	Code   string `json:"code"`
	Amount string `json:"amount"`
	Link   string `json:"link"`
}

// HoldingLine is one asset the session holds.
type HoldingLine struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// Holdings lists the session's assets; Notice is set when there are none.
type Holdings struct {
	Lines  []HoldingLine `json:"lines"`
	Notice string        `json:"notice,omitempty"`
}

// CurrencyLine is one registered currency.
type CurrencyLine struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Symbol string `json:"symbol,omitempty"`
	Rate   string `json:"rate"`
	Link   string `json:"link"`
}

// Balances lists the session's balances, registered currencies first in
// registry order, then any other codes alphabetically.
func Balances(st bank.State, s *bank.Session) []BalanceLine {
	if s == nil {
		return nil
	}
	lines := make([]BalanceLine, 0, len(s.Balances))
	for _, code := range orderedCodes(st, s.Balances) {
		link := models.PlaceholderLink
		if c, ok := st.Currency(code); ok {
			link = c.Link
		}
		lines = append(lines, BalanceLine{
			Code:   code,
			Amount: s.Balances[code].StringFixed(2),
			Link:   link,
		})
	}
	return lines
}

// HoldingsOf lists the session's assets with their current unit price.
func HoldingsOf(st bank.State, s *bank.Session) Holdings {
	if s == nil {
		return Holdings{}
	}
	if len(s.Holdings) == 0 {
		return Holdings{Notice: NoHoldingsNotice}
	}
	var h Holdings
	for _, name := range slices.Sorted(maps.Keys(s.Holdings)) {
		h.Lines = append(h.Lines, HoldingLine{
			Name:     name,
			Quantity: s.Holdings[name].String(),
			Price:    st.PriceOf(name).String(),
		})
	}
	return h
}

// Currencies lists every registered currency, held or not.
func Currencies(st bank.State) []CurrencyLine {
	lines := make([]CurrencyLine, 0, len(st.Currencies))
	for _, c := range st.Currencies {
		line := CurrencyLine{
			Code:  c.Code,
			Label: c.Label(),
			Rate:  c.Rate.String(),
			Link:  c.Link,
		}
		if known := money.GetCurrency(c.Code); known != nil {
			line.Symbol = known.Grapheme
		}
		lines = append(lines, line)
	}
	return lines
}

// PriceNote describes the unit price of the asset selected for trading.
func PriceNote(st bank.State, asset string) string {
	if asset == "" {
		return PriceNoteUnavailable
	}
	return fmt.Sprintf("Price: %s %s each", st.PriceOf(asset), st.Base)
}

// HoldingSummary flattens holdings into "name: qty, ..." or "-" when empty.
func HoldingSummary(h models.Amounts) string {
	if len(h) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(h))
	for _, name := range slices.Sorted(maps.Keys(h)) {
		parts = append(parts, fmt.Sprintf("%s: %s", name, h[name]))
	}
	return strings.Join(parts, ", ")
}

// orderedCodes returns the keys of amounts, registered codes first.
func orderedCodes(st bank.State, amounts models.Amounts) []string {
	codes := make([]string, 0, len(amounts))
	for _, c := range st.Currencies {
		if _, ok := amounts[c.Code]; ok {
			codes = append(codes, c.Code)
		}
	}
	var extra []string
	for code := range amounts {
		if _, ok := st.Currency(code); !ok {
			extra = append(extra, code)
		}
	}
	slices.Sort(extra)
	return append(codes, extra...)
}
