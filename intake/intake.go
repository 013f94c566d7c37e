package intake

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotdata/errutil"
)

const (
	ExtJSON = ".json"
	ExtCSV  = ".csv"
	ExtTXT  = ".txt"
	ExtHTML = ".html"

	// Wildcard disables qualifier filtering, as does an empty qualifier.
	Wildcard = "*"
)

var DefaultExtensions = []string{ExtCSV, ExtTXT, ExtJSON, ExtHTML}

type Options struct {
	Extensions []string
	// MaxCount stops the scan once that many items were collected. Zero means
	// no limit.
	MaxCount int
	// Qualifier keeps only files whose name contains it.
	Qualifier string
	// Prefix keeps only files whose name starts with it. It applies on top of
	// Qualifier.
	Prefix string
	// ListOnly collects paths without loading JSON documents.
	ListOnly bool
}

// Item is one scanned file. Doc holds the raw document of a JSON file and is
// nil for text formats, which are read later by path.
type Item struct {
	Path string
	Ext  string
	Doc  []byte
}

func (i Item) Name() string {
	return strings.TrimSuffix(filepath.Base(i.Path), i.Ext)
}

// Scan lists the immediate files of dir that pass the filters of opts.
// Malformed JSON files are logged and skipped. Items follow directory listing
// order, which on most platforms is name order; callers that rely on a
// particular first item must arrange it through the qualifier or file names.
func Scan(dir string, opts Options, logger zerolog.Logger) ([]Item, error) {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	flawP := flaw.P{"dir": dir}

	entries, err := os.ReadDir(dir)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to list directory: %v", err)).Append(flawP)
	}

	var items []Item
	for _, entry := range entries {
		if opts.MaxCount > 0 && len(items) >= opts.MaxCount {
			break
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !slices.Contains(opts.Extensions, ext) {
			continue
		}
		if q := opts.Qualifier; q != "" && q != Wildcard && !strings.Contains(name, q) {
			continue
		}
		if !strings.HasPrefix(name, opts.Prefix) {
			continue
		}

		item := Item{Path: filepath.Join(dir, name), Ext: ext}
		if ext == ExtJSON && !opts.ListOnly {
			doc, err := readJSON(item.Path)
			if nil != err {
				var decodeErr *errutil.DecodeError
				if errors.As(err, &decodeErr) {
					logger.Error().Err(decodeErr).Str("file", item.Path).Msg("Skipping malformed JSON file")
					continue
				}
				return nil, err
			}
			item.Doc = doc
		}
		items = append(items, item)
	}
	return items, nil
}

func readJSON(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if nil != err {
		flawP := flaw.P{"file_path": path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to read file: %v", err)).Append(flawP)
	}
	if !gjson.ValidBytes(b) {
		return nil, &errutil.DecodeError{Source: path}
	}
	return b, nil
}

// Remove deletes the files of items. Files already gone are ignored.
func Remove(items []Item, logger zerolog.Logger) error {
	logger.Info().Int("files", len(items)).Msg("Initializing file removal")
	for _, item := range items {
		if err := os.Remove(item.Path); nil != err && !errors.Is(err, os.ErrNotExist) {
			flawP := flaw.P{"file_path": item.Path, "err_debug_tree": errutil.Tree(err).FlawP()}
			return flaw.From(fmt.Errorf("failed to remove file: %v", err)).Append(flawP)
		}
	}
	logger.Info().Msg("All files have been removed")
	return nil
}

// Paths returns the path of every item.
func Paths(items []Item) []string {
	return lo.Map(items, func(item Item, _ int) string { return item.Path })
}
