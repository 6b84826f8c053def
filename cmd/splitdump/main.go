// splitdump prints a run's split journal as YAML.
//
// Usage:
//
//	go run ./cmd/splitdump log -file logs/splits/<run>.jsonl.zst [-out path]
//	go run ./cmd/splitdump db  -run <run> [-config path] [-out path]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/voidbreak/hull/internal/config"
	"github.com/voidbreak/hull/internal/persist"
)

// ---------------------------------------------------------------------------
// YAML output structs
// ---------------------------------------------------------------------------

type splitListYAML struct {
	RunID  string      `yaml:"run_id"`
	Splits []splitYAML `yaml:"splits"`
}

type splitYAML struct {
	Tick      uint64         `yaml:"tick"`
	Parent    uint64         `yaml:"parent"`
	Name      string         `yaml:"name"`
	Destroyed uint32         `yaml:"destroyed_block"`
	CoreSize  int            `yaml:"core_size"`
	Fragments []fragmentYAML `yaml:"fragments"`
}

type fragmentYAML struct {
	ID              uint64     `yaml:"id"`
	Blocks          []uint32   `yaml:"blocks,flow"`
	Velocity        [2]float64 `yaml:"velocity,flow"`
	AngularVelocity float64    `yaml:"angular_velocity"`
	Mass            float64    `yaml:"mass"`
	HP              float64    `yaml:"hp"`
}

func toYAML(records []persist.SplitRecord) splitListYAML {
	var out splitListYAML
	for _, r := range records {
		if out.RunID == "" {
			out.RunID = r.RunID
		}
		s := splitYAML{
			Tick:      r.Tick,
			Parent:    r.Parent,
			Name:      r.ParentName,
			Destroyed: r.Destroyed,
			CoreSize:  r.CoreSize,
		}
		for _, f := range r.Fragments {
			s.Fragments = append(s.Fragments, fragmentYAML(f))
		}
		out.Splits = append(out.Splits, s)
	}
	return out
}

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

func fromLog(path string) ([]persist.SplitRecord, error) {
	if path == "" {
		return nil, fmt.Errorf("-file is required")
	}
	return persist.ReadSplitLog(path)
}

func fromDB(cfgPath, runID string) ([]persist.SplitRecord, error) {
	if runID == "" {
		return nil, fmt.Errorf("-run is required")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.Journal.DSN == "" {
		return nil, fmt.Errorf("%s: journal.dsn is empty", cfgPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := persist.NewDB(ctx, cfg.Journal, zap.NewNop())
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return persist.NewSplitRepo(db).LoadRun(ctx, runID)
}

// ---------------------------------------------------------------------------
// YAML writer
// ---------------------------------------------------------------------------

func writeYAML(w io.Writer, records []persist.SplitRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(records)); err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return enc.Close()
}

func printUsage() {
	fmt.Println("Usage: splitdump <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  log   read a compressed split log (-file)")
	fmt.Println("  db    read one run from the journal database (-run, -config)")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	file := fs.String("file", "", "split log to read")
	runID := fs.String("run", "", "run id to load from the database")
	cfgPath := fs.String("config", "config/hullsim.toml", "hullsim config with the journal dsn")
	outPath := fs.String("out", "", "write YAML here instead of stdout")
	_ = fs.Parse(os.Args[2:])

	var (
		records []persist.SplitRecord
		err     error
	)
	switch cmd {
	case "log":
		records, err = fromLog(*file)
	case "db":
		records, err = fromDB(*cfgPath, *runID)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	w := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: create %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := writeYAML(w, records); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
