package view

import (
	"slices"

	"github.com/hongminglow/bunny-bank/internal/bank"
)

// Option is one entry of a selection list.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Options holds every selection list of the dashboard. They are rebuilt
// from scratch on every render.
type Options struct {
	Recipients        []Option `json:"recipients"`
	TradableAssets    []Option `json:"tradableAssets"`
	PriceableAssets   []Option `json:"priceableAssets"`
	PaymentCurrencies []Option `json:"paymentCurrencies"`
	BalanceCurrencies []Option `json:"balanceCurrencies"`
}

// OptionLists derives the selection lists. The recipient list omits the
// session's own user; asset lists are the union of every account's
// holdings, or a single disabled placeholder when that union is empty.
func OptionLists(st bank.State, s *bank.Session) Options {
	var self string
	if s != nil {
		self = s.Username
	}
	var opts Options
	for _, acc := range st.Accounts {
		if acc.Username == self {
			continue
		}
		opts.Recipients = append(opts.Recipients, plain(acc.Username))
	}

	assets := st.Assets()
	opts.TradableAssets = assetOptions(assets, NoTradableAssets)
	opts.PriceableAssets = assetOptions(assets, NoPriceableAssets)

	for _, c := range st.Currencies {
		opts.PaymentCurrencies = append(opts.PaymentCurrencies, plain(c.Code))
		opts.BalanceCurrencies = append(opts.BalanceCurrencies, plain(c.Code))
	}
	return opts
}

// Selected returns the value a list selects by default: its first enabled option.
func Selected(list []Option) string {
	i := slices.IndexFunc(list, func(o Option) bool { return !o.Disabled })
	if i < 0 {
		return ""
	}
	return list[i].Value
}

func assetOptions(assets []string, placeholder string) []Option {
	if len(assets) == 0 {
		return []Option{{Value: "", Label: placeholder, Disabled: true}}
	}
	out := make([]Option, 0, len(assets))
	for _, a := range assets {
		out = append(out, plain(a))
	}
	return out
}

func plain(v string) Option { return Option{Value: v, Label: v} }
