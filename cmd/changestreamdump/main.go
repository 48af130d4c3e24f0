package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/toga4/changestreamcore"
	"github.com/toga4/changestreamcore/partitiontoken"
)

type cmdFlags struct {
	fixturePath string
}

func parseFlags(cmd string, args []string) (*cmdFlags, error) {
	var flags cmdFlags

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [OPTIONS...]

Replays a hand-authored transaction fixture through
BuildChangeStreamWriteOps and prints the resulting change-stream rows as
newline-delimited JSON.

Options:
  -f, --fixture (required)  Path to a fixture JSON file
  -h, --help                Print this message

`, cmd)
	}

	fs.StringVar(&flags.fixturePath, "f", "", "")
	fs.StringVar(&flags.fixturePath, "fixture", "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if flags.fixturePath == "" {
		fs.Usage()
		return nil, fmt.Errorf("fixture is required")
	}

	return &flags, nil
}

// rowPrinter encodes each finalized record's 19-column physical row as one
// line of JSON.
type rowPrinter struct {
	out io.Writer
}

func (p *rowPrinter) ObserveRecord(r *changestreamcore.DataChangeRecord) {
	row, err := changestreamcore.DescribeRecordRow(r)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if err := json.NewEncoder(p.out).Encode(row); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func run(flags *cmdFlags, out io.Writer) error {
	data, err := os.ReadFile(flags.fixturePath)
	if err != nil {
		return err
	}

	fx, err := loadFixture(data)
	if err != nil {
		return err
	}

	schema, err := fx.buildSchema()
	if err != nil {
		return err
	}

	writeOps, err := fx.buildWriteOps(schema)
	if err != nil {
		return err
	}

	tokens := partitiontoken.NewInmemory()
	for name, token := range fx.PartitionTokens {
		tokens.Set(name, token)
	}

	printer := &rowPrinter{out: out}
	pipeline := changestreamcore.NewPipeline(schema, tokens, changestreamcore.WithRecordObserver(printer))

	if _, err := pipeline.BuildChangeStreamWriteOps(context.Background(), writeOps, fx.TransactionID, fx.CommitTimestamp); err != nil {
		return err
	}
	return nil
}

func main() {
	flags, err := parseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(flags, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
