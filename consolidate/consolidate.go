package consolidate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/must"
)

const DefaultDelimiter = ','

// Files concatenates same-schema delimited inputs into output in input order.
// The first input is copied whole; exactly one header row is skipped from
// every following input. Rows are not de-duplicated. It returns the number of
// rows written, header included.
func Files(inputs []string, output fs.File, delimiter rune, logger zerolog.Logger) (rows int, err error) {
	if len(inputs) == 0 {
		return 0, errutil.Invalid("inputs", "at least one input file is required")
	}
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	flawP := flaw.P{"output": output.Path}

	out, err := output.Create()
	if nil != err {
		return 0, err
	}
	defer func() {
		if closeErr := out.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close consolidated file: %v", closeErr)).Append(flawP)
			err = must.JoinClose(err, closeErr)
		}
	}()

	w := csv.NewWriter(out)
	for i, input := range inputs {
		logger.Info().Str("file", input).Int("index", i+1).Int("total", len(inputs)).Msg("Iterating file")
		n, err := copyRows(w, input, delimiter, i > 0)
		if nil != err {
			return rows, err
		}
		rows += n
	}

	w.Flush()
	if err := w.Error(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return rows, flaw.From(fmt.Errorf("failed to flush consolidated file: %v", err)).Append(flawP)
	}
	logger.Info().Int("files", len(inputs)).Int("rows", rows).Msg("All files have been consolidated")
	return rows, nil
}

func copyRows(w *csv.Writer, input string, delimiter rune, skipHeader bool) (n int, err error) {
	flawP := flaw.P{"input": input}

	f, err := os.Open(input)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return 0, flaw.From(fmt.Errorf("failed to open input file: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close input file: %v", closeErr)).Append(flawP)
			err = must.JoinClose(err, closeErr)
		}
	}()

	r := csv.NewReader(f)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	for skip := skipHeader; ; skip = false {
		rec, err := r.Read()
		if nil != err {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return n, flaw.From(fmt.Errorf("failed to read input file: %v", err)).Append(flawP)
		}
		if skip {
			continue
		}
		if err := w.Write(rec); nil != err {
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return n, flaw.From(fmt.Errorf("failed to write consolidated row: %v", err)).Append(flawP)
		}
		n++
	}
}
