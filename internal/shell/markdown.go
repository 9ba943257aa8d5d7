package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hongminglow/bunny-bank/internal/models"
	"github.com/hongminglow/bunny-bank/internal/view"
)

var _ Renderer = (*Markdown)(nil)

// Markdown renders dashboards as markdown, styled for the terminal unless plain.
type Markdown struct {
	w    io.Writer
	term *glamour.TermRenderer
}

// NewMarkdown writes to w. With plain set the raw markdown is written.
func NewMarkdown(w io.Writer, plain bool) (*Markdown, error) {
	m := &Markdown{w: w}
	if plain {
		return m, nil
	}
	term, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return nil, fmt.Errorf("init terminal renderer: %w", err)
	}
	m.term = term
	return m, nil
}

// Render implements view.Renderer.
func (m *Markdown) Render(d view.Dashboard) error {
	return m.write(DashboardMarkdown(d))
}

// RenderAdmin writes the account table alone.
func (m *Markdown) RenderAdmin(t view.AdminTable) error {
	var b strings.Builder
	writeAdmin(&b, &t)
	return m.write(b.String())
}

func (m *Markdown) write(md string) error {
	if m.term != nil {
		styled, err := m.term.Render(md)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		md = styled
	}
	_, err := io.WriteString(m.w, md)
	return err
}

// DashboardMarkdown lays a dashboard out as a markdown document.
func DashboardMarkdown(d view.Dashboard) string {
	var b strings.Builder
	if d.Notice != "" {
		fmt.Fprintf(&b, "> %s\n\n", escape(d.Notice))
	}
	if !d.LoggedIn {
		b.WriteString("## BunnyBank\n\nNot logged in. Try `login <username> <password>`.\n\n")
		writeOptions(&b, d)
		return b.String()
	}

	role := models.RoleCustomer
	if d.IsAdmin {
		role = models.RoleAdmin
	}
	fmt.Fprintf(&b, "## %s (%s)\n\n", escape(d.User), role)

	b.WriteString("### Balances\n\n| Currency | Amount |\n|---|---:|\n")
	for _, l := range d.Balances {
		fmt.Fprintf(&b, "| [%s](%s) | %s |\n", escape(l.Code), l.Link, l.Amount)
	}
	b.WriteString("\n### Crypto\n\n")
	if d.Holdings == nil || d.Holdings.Notice != "" {
		notice := view.NoHoldingsNotice
		if d.Holdings != nil {
			notice = d.Holdings.Notice
		}
		fmt.Fprintf(&b, "_%s_\n\n", notice)
	} else {
		b.WriteString("| Crypto | Quantity | Price |\n|---|---:|---:|\n")
		for _, l := range d.Holdings.Lines {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escape(l.Name), l.Quantity, l.Price)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Currencies\n\n| Code | Label | Symbol | Rate |\n|---|---|---|---:|\n")
	for _, c := range d.Currencies {
		fmt.Fprintf(&b, "| [%s](%s) | %s | %s | %s |\n", escape(c.Code), c.Link, escape(c.Label), escape(c.Symbol), c.Rate)
	}
	b.WriteString("\n")
	writeOptions(&b, d)

	if d.Admin != nil {
		writeAdmin(&b, d.Admin)
	}
	return b.String()
}

func writeOptions(b *strings.Builder, d view.Dashboard) {
	fmt.Fprintf(b, "### Trade\n\n%s\n\n", d.PriceNote)
	fmt.Fprintf(b, "- Cryptos: %s\n", optionList(d.Options.TradableAssets))
	fmt.Fprintf(b, "- Recipients: %s\n", optionList(d.Options.Recipients))
	fmt.Fprintf(b, "- Currencies: %s\n\n", optionList(d.Options.PaymentCurrencies))
}

func writeAdmin(b *strings.Builder, t *view.AdminTable) {
	b.WriteString("### Accounts\n\n| User | Role |")
	for _, c := range t.Columns {
		fmt.Fprintf(b, " %s |", escape(c))
	}
	b.WriteString(" Crypto |\n|---|---|")
	for range t.Columns {
		b.WriteString("---:|")
	}
	b.WriteString("---|\n")
	for _, r := range t.Rows {
		fmt.Fprintf(b, "| %s | %s |", escape(r.Username), r.Role)
		for _, v := range r.Balances {
			fmt.Fprintf(b, " %s |", v)
		}
		fmt.Fprintf(b, " %s |\n", escape(r.Holdings))
	}
	b.WriteString("\n")
}

func optionList(opts []view.Option) string {
	labels := make([]string, 0, len(opts))
	for _, o := range opts {
		labels = append(labels, escape(o.Label))
	}
	if len(labels) == 0 {
		return "-"
	}
	return strings.Join(labels, ", ")
}

// escape keeps user-supplied text from breaking table cells.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
