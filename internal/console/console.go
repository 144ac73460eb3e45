// Package console implements the interactive run configuration: two
// numeric prompts, a computed summary, and a y/n confirmation. Invalid
// input re-prompts in place instead of surfacing an error.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dpatel/binance-collector/internal/snapshot"
)

const divider = "============================================================"

// RunConfig is the pair of parameters the user is asked for.
type RunConfig struct {
	RuntimeHours        float64
	SaveIntervalMinutes float64
}

// Runtime returns the total run duration.
func (c RunConfig) Runtime() time.Duration {
	return time.Duration(c.RuntimeHours * float64(time.Hour))
}

// Interval returns the wait between batch starts.
func (c RunConfig) Interval() time.Duration {
	return time.Duration(c.SaveIntervalMinutes * float64(time.Minute))
}

// EstimatedFetches is the expected number of batches: one at t=0 plus
// one per full interval inside the runtime.
func (c RunConfig) EstimatedFetches() int {
	return int(c.RuntimeHours*60/c.SaveIntervalMinutes) + 1
}

// EstimatedFiles is the expected number of JSON files written.
func (c RunConfig) EstimatedFiles() int {
	return c.EstimatedFetches() * len(snapshot.Queries())
}

// Prompter reads configuration from in and writes prompts to out.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Configure runs the full interactive flow: prompt for both parameters,
// show the summary, and loop back to reconfiguration if the user
// declines. The only error is input running out (EOF).
func (p *Prompter) Configure() (RunConfig, error) {
	fmt.Fprintln(p.out, divider)
	fmt.Fprintln(p.out, "         BINANCE DATA COLLECTOR CONFIGURATION")
	fmt.Fprintln(p.out, divider)

	for {
		hours, err := p.promptPositiveFloat("\n1. How many hours should the collector run continuously? ")
		if err != nil {
			return RunConfig{}, err
		}
		minutes, err := p.promptPositiveFloat("\n2. What is the save interval in minutes? ")
		if err != nil {
			return RunConfig{}, err
		}
		cfg := RunConfig{RuntimeHours: hours, SaveIntervalMinutes: minutes}

		p.printSummary(cfg)
		ok, err := p.confirm("\nProceed with this configuration? (y/n): ")
		if err != nil {
			return RunConfig{}, err
		}
		if ok {
			return cfg, nil
		}
		fmt.Fprintln(p.out, "\nLet's reconfigure...")
	}
}

func (p *Prompter) promptPositiveFloat(label string) (float64, error) {
	for {
		fmt.Fprint(p.out, label)
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			fmt.Fprintln(p.out, "   Error: Please enter a valid number.")
			continue
		}
		if val <= 0 {
			fmt.Fprintln(p.out, "   Error: Please enter a positive number.")
			continue
		}
		return val, nil
	}
}

func (p *Prompter) confirm(label string) (bool, error) {
	for {
		fmt.Fprint(p.out, label)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(p.out, "Please enter 'y' for yes or 'n' for no.")
		}
	}
}

func (p *Prompter) printSummary(cfg RunConfig) {
	fmt.Fprintln(p.out, "\n"+divider)
	fmt.Fprintln(p.out, "                CONFIGURATION SUMMARY")
	fmt.Fprintln(p.out, divider)
	fmt.Fprintf(p.out, "Runtime Duration:    %g hours\n", cfg.RuntimeHours)
	fmt.Fprintf(p.out, "Save Interval:       %g minutes\n", cfg.SaveIntervalMinutes)
	fmt.Fprintf(p.out, "Estimated Fetches:   ~%d times\n", cfg.EstimatedFetches())
	fmt.Fprintf(p.out, "Estimated Files:     ~%d JSON files\n", cfg.EstimatedFiles())
	fmt.Fprintln(p.out, "\nFile Naming:")
	fmt.Fprintln(p.out, "  All files saved with unique timestamps")
	fmt.Fprintln(p.out, "  Format: [data_type]_YYYYMMDD_HHMMSS.json")
	fmt.Fprintln(p.out, divider)
}

func (p *Prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.in.Text(), nil
}
