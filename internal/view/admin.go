package view

import (
	"slices"

	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/models"
)

// AdminRow is one account in the admin table.
type AdminRow struct {
	Username string   `json:"username"`
	Role     string   `json:"role"`
	Balances []string `json:"balances"`
	Holdings string   `json:"holdings"`
}

// AdminTable shows every account's balances and holdings.
type AdminTable struct {
	Columns []string   `json:"columns"`
	Rows    []AdminRow `json:"rows"`
}

// Admin builds the admin table. Columns are the registered currencies in
// registry order followed by any other code an account still carries.
func Admin(st bank.State) AdminTable {
	var columns []string
	for _, c := range st.Currencies {
		columns = append(columns, c.Code)
	}
	var extra []string
	for _, acc := range st.Accounts {
		for code := range acc.Balances {
			if !slices.Contains(columns, code) && !slices.Contains(extra, code) {
				extra = append(extra, code)
			}
		}
	}
	slices.Sort(extra)
	columns = append(columns, extra...)

	t := AdminTable{Columns: columns}
	for _, acc := range st.Accounts {
		row := AdminRow{
			Username: acc.Username,
			Role:     models.RoleOf(acc.Username, st.Admin),
			Balances: make([]string, 0, len(columns)),
			Holdings: HoldingSummary(acc.Holdings),
		}
		for _, code := range columns {
			row.Balances = append(row.Balances, acc.Balances.Get(code).StringFixed(2))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
