// Package shell is an interactive single-session front end to the bank.
package shell

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/google/subcommands"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/view"
)

// Renderer is the shell's output surface.
type Renderer interface {
	view.Renderer
	RenderAdmin(t view.AdminTable) error
}

// Shell holds one session handle and renders after every command.
type Shell struct {
	bank     *bank.Bank
	renderer Renderer
	out      io.Writer
	errOut   io.Writer
	sid      string
}

// New returns a logged-out shell. Command output goes to out, usage and
// errors to errOut, dashboards to renderer.
func New(b *bank.Bank, renderer Renderer, out, errOut io.Writer) *Shell {
	return &Shell{bank: b, renderer: renderer, out: out, errOut: errOut}
}

// SessionID is the current session handle, "" when logged out.
func (s *Shell) SessionID() string { return s.sid }

// Run executes one command per input line until in is exhausted or a
// "quit" line is read. The logged-out dashboard is shown first.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	if err := s.show(""); err != nil {
		return err
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		s.Exec(ctx, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	if s.sid != "" {
		_, err := s.bank.Logout(ctx, s.sid)
		s.sid = ""
		return err
	}
	return nil
}

// Exec runs a single command line already split into words.
func (s *Shell) Exec(ctx context.Context, args []string) subcommands.ExitStatus {
	top := flag.NewFlagSet("bunnyshell", flag.ContinueOnError)
	top.SetOutput(s.errOut)
	if err := top.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	cdr := subcommands.NewCommander(top, "bunnyshell")
	cdr.Output = s.out
	cdr.Error = s.errOut
	cdr.Register(cdr.HelpCommand(), "")
	for _, c := range s.commands() {
		cdr.Register(c, c.group)
	}
	return cdr.Execute(ctx)
}

// apply runs a bank operation for the current session and renders the
// outcome. Failures are reported as their notice.
func (s *Shell) apply(ctx context.Context, op func(ctx context.Context, sid string) (bank.Event, error)) subcommands.ExitStatus {
	e, err := op(ctx, s.sid)
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := s.show(e.Notice); err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (s *Shell) show(notice string) error {
	d, err := view.Load(s.bank, s.sid)
	if err != nil {
		return err
	}
	d.Notice = notice
	return s.renderer.Render(d)
}
