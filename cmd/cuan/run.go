package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alimurrofid/petualangan-cuan/internal/app"
	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/store"
)

const dateLayout = "2006-01-02"

// errUsage is returned after usage text has been printed.
var errUsage = errors.New("usage")

type env struct {
	app     *app.App
	in      *bufio.Reader
	out     io.Writer
	confirm store.Confirmer
	now     func() time.Time
}

type handler func(ctx context.Context, e *env, args []string) error

type command struct {
	summary string
	public  bool
	run     handler
}

func commands() map[string]command {
	return map[string]command{
		"login":      {summary: "log in and remember the session", public: true, run: cmdLogin},
		"register":   {summary: "create an account", public: true, run: cmdRegister},
		"logout":     {summary: "forget the session", run: cmdLogout},
		"whoami":     {summary: "show the logged-in user", run: cmdWhoami},
		"wallets":    {summary: "list|add|delete wallets", run: group("wallets", walletCommands)},
		"categories": {summary: "list|add|delete categories", run: group("categories", categoryCommands)},
		"tx":         {summary: "list|add|transfer|delete transactions", run: group("tx", txCommands)},
		"calendar":   {summary: "daily income and expense totals", run: cmdCalendar},
		"debts":      {summary: "list|add|pay|delete-payment|delete debts", run: group("debts", debtCommands)},
		"wishlist":   {summary: "list|add|bought|delete wishlist items", run: group("wishlist", wishlistCommands)},
		"goals":      {summary: "list|add|contribute saving goals", run: group("goals", goalCommands)},
		"report":     {summary: "spending per category", run: cmdReport},
		"dashboard":  {summary: "balances and this month's totals", run: cmdDashboard},
		"health":     {summary: "financial health ratios", run: cmdHealth},
		"export":     {summary: "append unexported transactions to Google Sheets", run: cmdExport},
	}
}

func run(ctx context.Context, a *app.App, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("cuan", flag.ContinueOnError)
	fs.SetOutput(out)
	yes := fs.Bool("y", false, "answer yes to confirmation prompts")
	fs.Usage = func() { usage(out) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(out)
		return errUsage
	}
	cmd, ok := commands()[rest[0]]
	if !ok {
		usage(out)
		return fmt.Errorf("unknown command %q", rest[0])
	}

	reader := bufio.NewReader(in)
	e := &env{app: a, in: reader, out: out, now: time.Now}
	if *yes {
		e.confirm = store.AlwaysConfirm{}
	} else {
		e.confirm = &terminalConfirmer{in: reader, out: out}
	}

	if !cmd.public {
		if err := a.RequireAuth(); err != nil {
			return fmt.Errorf("%w: run 'cuan login' first", err)
		}
	}
	return cmd.run(ctx, e, rest[1:])
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "usage: cuan [-y] <command> [args]")
	fmt.Fprintln(out)
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-11s %s\n", name, cmds[name].summary)
	}
}

// group dispatches to a subcommand, defaulting to "list".
func group(name string, subs map[string]handler) handler {
	return func(ctx context.Context, e *env, args []string) error {
		sub := "list"
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			sub, args = args[0], args[1:]
		}
		fn, ok := subs[sub]
		if !ok {
			keys := make([]string, 0, len(subs))
			for k := range subs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return fmt.Errorf("unknown %s command %q (want one of %s)", name, sub, strings.Join(keys, ", "))
		}
		return fn(ctx, e, args)
	}
}

func newFlags(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.out)
	return fs
}

// prompt reads one line from the terminal.
func (e *env) prompt(label string) (string, error) {
	fmt.Fprint(e.out, label)
	line, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// confirmed asks before a destructive action and reports the answer.
func (e *env) confirmed(ctx context.Context, title, message string) (bool, error) {
	ok, err := e.confirm.Confirm(ctx, title, message)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(e.out, "Cancelled.")
	}
	return ok, nil
}

func parseID(args []string, what string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("missing %s id", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, nil, fmt.Errorf("invalid %s id %q", what, args[0])
	}
	return id, args[1:], nil
}

func parseAmount(s, what string) (decimal.Decimal, error) {
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", what, s)
	}
	return d, nil
}

// parseDate reads YYYY-MM-DD; empty means today.
func (e *env) parseDate(s string) (time.Time, error) {
	if s == "" {
		now := e.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// optionalDate is parseDate where empty means no date.
func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return &t, nil
}

// monthRange returns from/to, defaulting to the current month.
func (e *env) monthRange(from, to string) (string, string, error) {
	if from == "" && to == "" {
		now := e.now()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start.Format(dateLayout), start.AddDate(0, 1, -1).Format(dateLayout), nil
	}
	for _, s := range []string{from, to} {
		if _, err := time.Parse(dateLayout, s); err != nil {
			return "", "", fmt.Errorf("invalid date %q: want YYYY-MM-DD (both -from and -to)", s)
		}
	}
	return from, to, nil
}
