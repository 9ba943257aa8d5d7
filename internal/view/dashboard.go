package view

import "github.com/hongminglow/bunny-bank/internal/bank"

// Dashboard is everything one screen shows. A nil session yields the
// logged-out view: option lists only.
type Dashboard struct {
	LoggedIn   bool           `json:"loggedIn"`
	User       string         `json:"user,omitempty"`
	IsAdmin    bool           `json:"isAdmin"`
	Notice     string         `json:"notice,omitempty"`
	Balances   []BalanceLine  `json:"balances,omitempty"`
	Holdings   *Holdings      `json:"holdings,omitempty"`
	Currencies []CurrencyLine `json:"currencies,omitempty"`
	Options    Options        `json:"options"`
	PriceNote  string         `json:"priceNote"`
	Admin      *AdminTable    `json:"admin,omitempty"`
}

// Build assembles the dashboard for s, which may be nil.
func Build(st bank.State, s *bank.Session) Dashboard {
	d := Dashboard{Options: OptionLists(st, s)}
	d.PriceNote = PriceNote(st, Selected(d.Options.TradableAssets))
	if s == nil {
		return d
	}
	h := HoldingsOf(st, s)
	d.LoggedIn = true
	d.User = s.Username
	d.IsAdmin = s.IsAdmin
	d.Balances = Balances(st, s)
	d.Holdings = &h
	d.Currencies = Currencies(st)
	if s.IsAdmin {
		t := Admin(st)
		d.Admin = &t
	}
	return d
}

// Source is the read side of the bank.
type Source interface {
	Snapshot(sid string) (bank.State, *bank.Session, error)
}

// Load snapshots src and builds the dashboard for sid ("" for logged out).
func Load(src Source, sid string) (Dashboard, error) {
	st, s, err := src.Snapshot(sid)
	if err != nil {
		return Dashboard{}, err
	}
	return Build(st, s), nil
}

// Renderer writes a dashboard to some surface.
type Renderer interface {
	Render(d Dashboard) error
}
