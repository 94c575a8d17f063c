package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	jmespath "github.com/jmespath-community/go-jmespath"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// outputOptions are shared by every command that prints data.
type outputOptions struct {
	Format string
	Query  string
}

func addOutputFlags(fs *flag.FlagSet, o *outputOptions) {
	fs.StringVar(&o.Format, "output", formatTable, "Output format: json or table")
	fs.StringVar(&o.Query, "query", "", "JMESPath expression applied to the JSON result (implies --output json)")
}

func (o *outputOptions) validate() error {
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	switch o.Format {
	case formatTable, formatJSON:
	default:
		return fmt.Errorf("%w: --output must be json or table, got %q", errUsage, o.Format)
	}
	if q := strings.TrimSpace(o.Query); q != "" {
		if _, err := jmespath.Compile(q); err != nil {
			return fmt.Errorf("%w: invalid --query: %v", errUsage, err)
		}
		o.Query = q
		o.Format = formatJSON
	}
	return nil
}

// tableFn writes rows to a tabwriter; the caller flushes.
type tableFn func(tw *tabwriter.Writer) error

// render prints v as JSON (optionally filtered by the JMESPath query) or via
// table. A nil table always prints JSON.
func render(w io.Writer, o outputOptions, v any, table tableFn) error {
	if o.Format != formatJSON && o.Query == "" && table != nil {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if err := table(tw); err != nil {
			return err
		}
		return tw.Flush()
	}

	var out any = v
	if o.Query != "" {
		generic, err := toGeneric(v)
		if err != nil {
			return err
		}
		out, err = jmespath.Search(o.Query, generic)
		if err != nil {
			return fmt.Errorf("evaluate --query: %w", err)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// toGeneric converts v into the map/slice form JMESPath evaluates.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return generic, nil
}

func row(tw *tabwriter.Writer, cols ...any) error {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	_, err := fmt.Fprintln(tw, strings.Join(parts, "\t"))
	return err
}

// optionalFloat is a flag that records whether it was set.
type optionalFloat struct {
	v *float64
}

func (f *optionalFloat) String() string {
	if f.v == nil {
		return ""
	}
	return strconv.FormatFloat(*f.v, 'f', -1, 64)
}

func (f *optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("must be a number")
	}
	f.v = &v
	return nil
}

// optionalBool is a bool flag that records whether it was set.
type optionalBool struct {
	v *bool
}

func (b *optionalBool) String() string {
	if b.v == nil {
		return ""
	}
	return strconv.FormatBool(*b.v)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.v = &v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parseArgs parses flags that may appear before or after positional
// arguments and returns the positional ones.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// parseID reads a positive numeric id from the first positional argument.
func parseID(positional []string, what string) (int64, error) {
	if len(positional) < 1 {
		return 0, fmt.Errorf("%w: %s id is required", errUsage, what)
	}
	id, err := strconv.ParseInt(positional[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s id must be a positive number, got %q", errUsage, what, positional[0])
	}
	return id, nil
}

// readLine prompts on w and reads one line from r.
func readLine(r io.Reader, w io.Writer, prompt string) (string, error) {
	if err := writef(w, "%s", prompt); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
