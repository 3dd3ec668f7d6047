package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mmynk/smartsplit/internal/config"
	"github.com/mmynk/smartsplit/internal/models"
	"github.com/mmynk/smartsplit/internal/report"
	"github.com/mmynk/smartsplit/internal/session"
)

const shellHelp = `Commands:
  add <name>[, <name>...]               add people, comma separated
  expense <payer> <amount> [i,j,...]    record an expense; no indices splits among everyone
  set <index> <balance>                 overwrite a balance
  list                                  show balances
  settle                                suggest payments that settle all balances
  save                                  write balances to storage
  reset                                 delete everyone and the saved data
  help                                  show this help
  quit                                  leave without saving
`

var errQuit = errors.New("quit")

type shellCmd struct {
	cfg *config.Config
}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "edit the ledger interactively" }
func (*shellCmd) Usage() string {
	return `smartsplit shell

  Reads one command per line from stdin. Type "help" for the command list.
  Unsaved changes are lost on quit.
`
}

func (*shellCmd) SetFlags(*flag.FlagSet) {}

func (c *shellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := OpenStore(c.cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	sh := NewShell(session.Open(ctx, store), os.Stdin, os.Stdout)
	if err := sh.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// Shell is a line-oriented front end over a Session. Each input line is one
// action; a failed action is reported and the shell keeps going.
type Shell struct {
	session *session.Session
	in      *bufio.Scanner
	out     io.Writer
	prompt  string
}

func NewShell(s *session.Session, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		session: s,
		in:      bufio.NewScanner(in),
		out:     out,
		prompt:  "> ",
	}
}

// Run reads commands until quit, end of input or ctx is done.
func (sh *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(sh.out, `SmartSplit. Type "help" for commands.`)
	sh.list()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(sh.out, sh.prompt)
		if !sh.in.Scan() {
			fmt.Fprintln(sh.out)
			return sh.in.Err()
		}

		err := sh.exec(ctx, sh.in.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *Shell) exec(ctx context.Context, line string) error {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "":
		return nil
	case "add":
		return sh.add(rest)
	case "expense":
		return sh.expense(rest)
	case "set":
		return sh.set(rest)
	case "list", "ls":
		sh.list()
		return nil
	case "settle":
		sh.settle()
		return nil
	case "save":
		return sh.save(ctx)
	case "reset":
		return sh.reset(ctx)
	case "help", "?":
		fmt.Fprint(sh.out, shellHelp)
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type \"help\"", verb)
	}
}

func (sh *Shell) add(rest string) error {
	added, people := sh.session.AddPeople(rest)
	if added == 0 {
		return errors.New("no names given, usage: add <name>[, <name>...]")
	}
	fmt.Fprintf(sh.out, "Added %d.\n", added)
	sh.print(people)
	return nil
}

func (sh *Shell) expense(rest string) error {
	fields := splitArgs(rest)
	if len(fields) < 2 {
		return errors.New("usage: expense <payer> <amount> [i,j,...]")
	}

	payer, err := parseIndex(fields[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(fields[1])
	if err != nil {
		return err
	}

	var beneficiaries []int
	for _, f := range fields[2:] {
		i, err := parseIndex(f)
		if err != nil {
			return err
		}
		beneficiaries = append(beneficiaries, i)
	}

	people, err := sh.session.AddExpense(payer, amount, beneficiaries)
	if err != nil {
		return err
	}
	sh.print(people)
	return nil
}

func (sh *Shell) set(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return errors.New("usage: set <index> <balance>")
	}

	index, err := parseIndex(fields[0])
	if err != nil {
		return err
	}
	value, err := parseAmount(fields[1])
	if err != nil {
		return err
	}

	people, err := sh.session.EditBalance(index, value)
	if err != nil {
		return err
	}
	sh.print(people)
	return nil
}

func (sh *Shell) list() {
	sh.print(sh.session.People())
}

func (sh *Shell) print(people []models.Person) {
	if len(people) == 0 {
		fmt.Fprintln(sh.out, "No people yet.")
		return
	}
	for i, p := range people {
		fmt.Fprintf(sh.out, "%3d  %s\n", i, report.Line(p))
	}
}

func (sh *Shell) settle() {
	edges := sh.session.Settlements()
	if len(edges) == 0 {
		fmt.Fprintln(sh.out, "All settled.")
		return
	}
	for _, e := range edges {
		fmt.Fprintln(sh.out, report.Settlement(e))
	}
}

func (sh *Shell) save(ctx context.Context) error {
	saved, err := sh.session.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Data saved successfully (%d people).\n", saved)
	return nil
}

func (sh *Shell) reset(ctx context.Context) error {
	fmt.Fprint(sh.out, "Delete everyone and the saved data? [y/N] ")
	if !sh.in.Scan() {
		return errors.New("reset cancelled")
	}
	switch strings.ToLower(strings.TrimSpace(sh.in.Text())) {
	case "y", "yes":
	default:
		fmt.Fprintln(sh.out, "Reset cancelled.")
		return nil
	}

	if err := sh.session.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Everything cleared.")
	return nil
}

// splitArgs splits on whitespace and commas so "0,1, 2" and "0 1 2" agree.
func splitArgs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return i, nil
}

// parseAmount accepts plain decimal input, optionally prefixed with "$".
func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "$"))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.InexactFloat64(), nil
}
