// ladderflow is the command-line front end for the analysis pipeline:
// it runs one pass over a project artifact and prints the derived
// diagram, device cross-reference or diagnostics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ladderflow/ladderflow/pkg/analysis"
	"github.com/ladderflow/ladderflow/pkg/diag"
	"github.com/ladderflow/ladderflow/pkg/logging"
	"github.com/ladderflow/ladderflow/pkg/snapshot"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(os.Args[2:])
	case "devices":
		runDevices(os.Args[2:])
	case "diagnostics":
		runDiagnostics(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ladderflow <command> [flags] <artifact>

Commands:
  analyze      run a pass and print the flowchart markup
  devices      run a pass and print the device cross-reference
  diagnostics  run a pass and print its diagnostics

Common flags:
  -workers N      decode parallelism (default 4)
  -timeout D      pass timeout (default 30s)
  -v              verbose JSON logs on stderr
`)
}

// runPass is the shared front half of every command: flags, artifact
// read, one analysis pass
func runPass(name string, args []string) (*analysis.Context, *flag.FlagSet, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	workers := fs.Int("workers", 4, "Decode parallelism")
	timeout := fs.Duration("timeout", 30*time.Second, "Pass timeout")
	verbose := fs.Bool("v", false, "Verbose logs on stderr")
	snapshotDir := fs.String("snapshot-dir", "", "Also persist the result under this directory")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing artifact path\n", name)
		os.Exit(2)
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: reading %s: %v\n", name, path, err)
		os.Exit(1)
	}

	logger := logging.Logger(logging.NewNopLogger())
	if *verbose {
		logger = logging.NewJSONLogger(os.Stderr, logging.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	analyzer := analysis.New(analysis.Options{Workers: *workers, Logger: logger})
	actx, err := analyzer.Run(ctx, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: analysis failed: %v\n", name, err)
		os.Exit(1)
	}

	if *snapshotDir != "" {
		store, err := snapshot.NewStore(*snapshotDir, logger)
		if err == nil {
			_, err = store.Save(actx)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: snapshot failed: %v\n", name, err)
		}
	}

	return actx, fs, fs.Args()[1:]
}

func runAnalyze(args []string) {
	actx, _, _ := runPass("analyze", args)

	fmt.Print(actx.Diagram().Markup)
	fmt.Fprintf(os.Stderr, "pass %s: %d networks, %d nodes, %d diagnostics\n",
		actx.PassID(), actx.NetworkCount(), len(actx.Graph().Nodes), len(actx.Diagnostics()))
}

func runDevices(args []string) {
	actx, _, rest := runPass("devices", args)

	// With an address argument, print just that device's networks.
	if len(rest) > 0 {
		address := rest[0]
		ids, ok := actx.DeviceNetworks(address)
		if !ok {
			fmt.Fprintf(os.Stderr, "devices: invalid address %q\n", address)
			os.Exit(2)
		}
		fmt.Printf("%s:", address)
		for _, id := range ids {
			fmt.Printf(" %d", id)
		}
		fmt.Println()
		return
	}

	for _, dev := range actx.Devices() {
		ids, _ := actx.DeviceNetworks(dev.Address())
		fmt.Printf("%s:", dev.Address())
		for _, id := range ids {
			fmt.Printf(" %d", id)
		}
		fmt.Println()
	}
}

func runDiagnostics(args []string) {
	actx, _, _ := runPass("diagnostics", args)

	diags := actx.Diagnostics()
	if len(diags) == 0 {
		fmt.Println("no diagnostics")
		return
	}
	for _, d := range diags {
		fmt.Println(d.String())
	}
	if len(actx.DiagnosticsBySeverity(diag.Error)) > 0 {
		os.Exit(1)
	}
}
