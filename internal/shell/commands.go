package shell

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/view"
)

// command adapts a positional-argument action to subcommands.Command.
type command struct {
	name     string
	group    string
	synopsis string
	usage    string
	args     int
	flags    func(f *flag.FlagSet)
	run      func(ctx context.Context, args []string) subcommands.ExitStatus
}

func (c *command) Name() string     { return c.name }
func (c *command) Synopsis() string { return c.synopsis }
func (c *command) Usage() string    { return c.usage + "\n" }

func (c *command) SetFlags(f *flag.FlagSet) {
	if c.flags != nil {
		c.flags(f)
	}
}

func (c *command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < c.args {
		fmt.Fprintf(f.Output(), "usage: %s", c.Usage())
		return subcommands.ExitUsageError
	}
	return c.run(ctx, args)
}

// arg returns the i-th positional argument or "".
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (s *Shell) commands() []*command {
	var link string
	linkFlag := func(f *flag.FlagSet) {
		f.StringVar(&link, "link", "", "Reference URL for the currency")
	}

	return []*command{
		{
			name: "login", group: "session", args: 2,
			synopsis: "open a session",
			usage:    "login <username> <password>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				if s.sid != "" {
					if _, err := s.bank.Logout(ctx, s.sid); err != nil {
						fmt.Fprintf(s.errOut, "Error: %v\n", err)
					}
					s.sid = ""
				}
				return s.apply(ctx, func(ctx context.Context, _ string) (bank.Event, error) {
					e, err := s.bank.Login(ctx, args[0], args[1])
					if err == nil {
						s.sid = e.SessionID
					}
					return e, err
				})
			},
		},
		{
			name: "logout", group: "session",
			synopsis: "close the session",
			usage:    "logout",
			run: func(ctx context.Context, _ []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					e, err := s.bank.Logout(ctx, sid)
					if err == nil {
						s.sid = ""
					}
					return e, err
				})
			},
		},
		{
			name: "show", group: "session",
			synopsis: "render the dashboard",
			usage:    "show",
			run: func(context.Context, []string) subcommands.ExitStatus {
				if err := s.show(""); err != nil {
					fmt.Fprintf(s.errOut, "Error: %v\n", err)
					return subcommands.ExitFailure
				}
				return subcommands.ExitSuccess
			},
		},
		{
			name: "create-asset", group: "crypto", args: 1,
			synopsis: "create a crypto, paying the creation fee",
			usage:    "create-asset <name>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.CreateAsset(ctx, sid, args[0])
				})
			},
		},
		{
			name: "buy", group: "crypto", args: 2,
			synopsis: "buy crypto with base currency",
			usage:    "buy <crypto> <quantity>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.BuyAsset(ctx, sid, args[0], bank.ParseAmount(args[1]))
				})
			},
		},
		{
			name: "sell", group: "crypto", args: 2,
			synopsis: "sell crypto for base currency",
			usage:    "sell <crypto> <quantity>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.SellAsset(ctx, sid, args[0], bank.ParseAmount(args[1]))
				})
			},
		},
		{
			name: "pay", group: "payments", args: 3,
			synopsis: "send money to another user",
			usage:    "pay <recipient> <amount> <currency>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.SendPayment(ctx, sid, args[0], bank.ParseAmount(args[1]), args[2])
				})
			},
		},
		{
			name: "create-account", group: "admin", args: 2,
			synopsis: "create a user account",
			usage:    "create-account <username> <password>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.CreateAccount(ctx, sid, args[0], args[1])
				})
			},
		},
		{
			name: "set-rate", group: "admin", args: 2,
			synopsis: "set a currency's rate against the base",
			usage:    "set-rate <code> <rate>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.SetRate(ctx, sid, args[0], bank.ParseAmount(args[1]))
				})
			},
		},
		{
			name: "set-balance", group: "admin", args: 3,
			synopsis: "overwrite a user's balance",
			usage:    "set-balance <username> <currency> <amount>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.SetBalance(ctx, sid, args[0], args[1], bank.ParseAmount(args[2]))
				})
			},
		},
		{
			name: "set-price", group: "admin", args: 2,
			synopsis: "set a crypto's price in base currency",
			usage:    "set-price <crypto> <price>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.SetAssetPrice(ctx, sid, args[0], bank.ParseAmount(args[1]))
				})
			},
		},
		{
			name: "add-currency", group: "admin", args: 3, flags: linkFlag,
			synopsis: "register a currency",
			usage:    "add-currency [-link <url>] <code> <label> <rate>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.AddCurrency(ctx, sid, args[0], args[1], bank.ParseAmount(args[2]), link)
				})
			},
		},
		{
			name: "edit-currency", group: "admin", args: 3, flags: linkFlag,
			synopsis: "change a currency's label, rate or link",
			usage:    "edit-currency [-link <url>] <code> <label> <rate>",
			run: func(ctx context.Context, args []string) subcommands.ExitStatus {
				return s.apply(ctx, func(ctx context.Context, sid string) (bank.Event, error) {
					return s.bank.EditCurrency(ctx, sid, args[0], args[1], bank.ParseAmount(args[2]), link)
				})
			},
		},
		{
			name: "admin", group: "admin",
			synopsis: "show every account",
			usage:    "admin",
			run: func(context.Context, []string) subcommands.ExitStatus {
				t, err := s.adminTable()
				if err == nil {
					err = s.renderer.RenderAdmin(t)
				}
				if err != nil {
					fmt.Fprintf(s.errOut, "Error: %v\n", err)
					return subcommands.ExitFailure
				}
				return subcommands.ExitSuccess
			},
		},
	}
}

func (s *Shell) adminTable() (view.AdminTable, error) {
	if s.sid == "" {
		return view.AdminTable{}, bank.ErrNoSession
	}
	st, sess, err := s.bank.Snapshot(s.sid)
	if err != nil {
		return view.AdminTable{}, err
	}
	if !sess.IsAdmin {
		return view.AdminTable{}, bank.ErrAdminOnly
	}
	return view.Admin(st), nil
}
