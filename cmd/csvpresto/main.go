package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/razeghi71/csvpresto/config"
	"github.com/razeghi71/csvpresto/engine"
	"github.com/razeghi71/csvpresto/loader"
	"github.com/razeghi71/csvpresto/logging"
	"github.com/razeghi71/csvpresto/query"
	"github.com/razeghi71/csvpresto/render"
)

const usage = `usage: csvpresto OPERATION [FILE] [options]

Compute grouped statistics over a delimited file (or standard input when
FILE is omitted or "-"). The first line names the columns.

Operations: SUM, AVG, MIN, MAX, COUNT, HEADERS (case-insensitive)

Options:
  -g, --group COLS...      columns to group by
  -s, --stats COLS...      columns to aggregate (required for SUM/AVG/MIN/MAX)
  -a, --asc COLS...        sort ascending by these group or stat columns
  -d, --desc COLS...       sort descending by these group or stat columns
  -r, --rows N             print at most N rows
  -c, --csv                print CSV instead of aligned text
  -o, --op OPERATION       operation, instead of the first argument
  -f, --file FILE          input file, instead of the second argument
      --precision N        decimals for averages (default 2)
      --on-malformed P     skip or abort on rows with the wrong field count
      --delimiter C        field separator for text input (default ",")
      --format F           csv, tsv, jsonl, avro or parquet
  -h, --help               show this help

Columns are 1-based and may be listed as "2 3", "2,3" or "2-3".

Examples:
  csvpresto headers staff.csv
  csvpresto sum staff.csv -g 2 -s 3
  csvpresto avg staff.csv.gz -g 2 -s 3 -d 3 -r 5 -c
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fail := func(err error) int {
		fmt.Fprintf(stderr, "csvpresto: %v\n", err)
		return 1
	}

	parsed, err := query.Parse(args)
	if err != nil {
		return fail(err)
	}
	if parsed.Help {
		fmt.Fprint(stdout, usage)
		return 0
	}

	if err := config.LoadDotEnv(); err != nil {
		return fail(err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr)

	q := cfg.Apply(parsed)
	if err := q.Validate(); err != nil {
		return fail(err)
	}
	if q.Op == query.OpCount && len(q.StatCols) > 0 {
		logger.Warn("COUNT ignores stat columns", "columns", q.StatCols)
	}

	src, err := loader.Open(q.Filename, loader.Options{
		Format:    q.Format,
		Delimiter: q.Delimiter,
		Stdin:     stdin,
	})
	if err != nil {
		return fail(err)
	}
	defer src.Close()

	result, err := engine.Execute(q, src, engine.Options{
		OnMalformed: q.OnMalformed,
		Precision:   q.Precision,
		Logger:      logging.WithFields(logger, "op", q.Op.String()),
	})
	if err != nil {
		return fail(err)
	}

	out := bufio.NewWriter(stdout)
	if err := render.New(out, q.CSV).Format(result); err != nil {
		return fail(err)
	}
	if err := out.Flush(); err != nil {
		return fail(err)
	}
	return 0
}
