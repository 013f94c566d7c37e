package flatten

import (
	"encoding/csv"
	"fmt"

	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/must"
)

// Write stores t as a comma-separated file with its header on the first row.
func Write(file fs.File, t *Table) (err error) {
	flawP := flaw.P{"file_path": file.Path, "table": t.Name}

	f, err := file.Create()
	if nil != err {
		return err
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close parsed file: %v", closeErr)).Append(flawP)
			err = must.JoinClose(err, closeErr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.WriteAll(t.Records()); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to write parsed file: %v", err)).Append(flawP)
	}
	return nil
}
