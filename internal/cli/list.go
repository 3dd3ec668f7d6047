package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/mmynk/smartsplit/internal/config"
	"github.com/mmynk/smartsplit/internal/report"
	"github.com/mmynk/smartsplit/internal/session"
)

type listCmd struct {
	cfg    *config.Config
	settle bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "print the saved balances and exit" }
func (*listCmd) Usage() string {
	return `smartsplit list [-settle]

  Loads the saved ledger and prints one "name: balance" line per person.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.settle, "settle", false, "Also print suggested settlement payments.")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := OpenStore(c.cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	s := session.Open(ctx, store)
	if err := report.Write(os.Stdout, s.People()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.settle {
		for _, e := range s.Settlements() {
			fmt.Println(report.Settlement(e))
		}
	}
	return subcommands.ExitSuccess
}
