// mozart CLI - inspects the built-in value layer and runs small dataflow
// programs against it
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/mozart/archive"
	"github.com/chazu/mozart/config"
	"github.com/chazu/mozart/vm"
	"github.com/chazu/mozart/vm/pickle"
	"github.com/chazu/mozart/vm/sched"
)

func main() {
	configDir := flag.String("config", ".", "Directory to search upward for mozart.toml")
	verbose := flag.Int("v", -1, "Log verbosity (overrides mozart.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mozart [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  types             List built-in types and their storage\n")
		fmt.Fprintf(os.Stderr, "  demo              Run a dataflow demo on the scheduler\n")
		fmt.Fprintf(os.Stderr, "  pickle <file>     Write a sample value as a pickle\n")
		fmt.Fprintf(os.Stderr, "  unpickle <file>   Print the value stored in a pickle\n")
		fmt.Fprintf(os.Stderr, "  save <key>        Store the sample value in the archive\n")
		fmt.Fprintf(os.Stderr, "  load <key>        Print a value from the archive\n")
		fmt.Fprintf(os.Stderr, "  ls                List archive entries\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	verbosity := cfg.Log.Verbosity
	if *verbose >= 0 {
		verbosity = *verbose
	}
	commonlog.Configure(verbosity, cfg.LogFile())

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	m := vm.NewVMWithOptions(cfg.VMOptions())
	args := flag.Args()

	switch args[0] {
	case "types":
		err = listTypes(m)
	case "demo":
		err = runDemo(m, cfg)
	case "pickle":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = writePickle(m, args[1])
	case "unpickle":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = readPickle(m, args[1])
	case "save", "load":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = withArchive(cfg, func(a *archive.Archive) error {
			if args[0] == "save" {
				return saveSample(m, a, args[1])
			}
			return loadValue(m, a, args[1])
		})
	case "ls":
		err = withArchive(cfg, listArchive)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listTypes(m *vm.VM) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tSTORAGE\tOPERATIONS")
	for _, t := range vm.Types.All() {
		fmt.Fprintf(w, "%s\t%s\t%d\n", t.Name(), t.Storage(), len(m.VTable(t).Operations()))
	}
	return w.Flush()
}

// runDemo computes Z = X * Y + 1 in one thread while another thread binds
// X and Y later, so the first thread suspends and is resumed.
func runDemo(m *vm.VM, cfg *config.Config) error {
	s := sched.New(m, cfg.SchedulerOptions())

	x, y := vm.NewVariable(m), vm.NewVariable(m)
	prod, z := vm.NewVariable(m), vm.NewVariable(m)
	big := vm.NewVariable(m)

	s.Spawn("consumer",
		sched.Apply(prod, x, "*", y),
		sched.Apply(z, prod, "+", vm.BuildSmallInt(m, 1)),
		sched.Apply(big, z, "*", vm.BuildInt(m, vm.MaxSmallInt)),
	)
	s.Spawn("producer",
		sched.Bind(x, vm.BuildSmallInt(m, 6)),
		sched.Bind(y, vm.BuildSmallInt(m, 7)),
	)
	bad := s.Spawn("mismatch",
		sched.Apply(vm.NewVariable(m), vm.True, "and", vm.BuildSmallInt(m, 1)),
	)

	if err := s.Run(context.Background()); err != nil {
		return err
	}

	fmt.Printf("Z = %s\n", m.Print(z))
	fmt.Printf("Z * MaxSmallInt = %s\n", m.Print(big))
	if p, ok := bad.Raised(); ok {
		fmt.Printf("mismatch raised %s\n", m.Print(p))
	}
	for _, t := range s.Threads() {
		fmt.Printf("thread %-9s %-10s retries=%d\n", t.Name, t.State(), t.Retries())
	}
	return nil
}

func sampleValue(m *vm.VM) vm.Value {
	return vm.BuildTuple(m, "sample",
		vm.True,
		vm.BuildInt(m, -42),
		vm.BuildFloat(m, 2.5),
		vm.BuildAtom(m, "Hello world"),
		vm.NewName(m),
		vm.BuildUnit(m),
	)
}

func writePickle(m *vm.VM, path string) error {
	v := sampleValue(m)
	data, err := pickle.Marshal(m, v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", m.Print(v), len(data))
	return nil
}

func readPickle(m *vm.VM, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	v, err := pickle.Unmarshal(m, data)
	if err != nil {
		return err
	}
	fmt.Println(m.Print(v))
	return nil
}

func withArchive(cfg *config.Config, fn func(a *archive.Archive) error) error {
	a, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func saveSample(m *vm.VM, a *archive.Archive, key string) error {
	v := sampleValue(m)
	if err := a.Save(m, key, v); err != nil {
		return err
	}
	fmt.Printf("Saved %s as %s in %s\n", m.Print(v), key, a.Path())
	return nil
}

func loadValue(m *vm.VM, a *archive.Archive, key string) error {
	v, err := a.Load(m, key)
	if err != nil {
		return err
	}
	fmt.Println(m.Print(v))
	return nil
}

func listArchive(a *archive.Archive) error {
	entries, err := a.Entries()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTYPE\tSAVED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, e.RootType, e.SavedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
