package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/must"
)

const (
	CategoryTrackData     = "spot-track-data"
	CategoryAudioFeatures = "spot-track-audio-features"
	CategoryAudioAnalysis = "spot-track-audio-analysis"
	CategoryArtistData    = "spot-artist-data"
	CategoryAlbumData     = "spot-album-data"
	CategoryWeeklyCharts  = "spotify-charts-weekly-top-charts"
	CategoryKworbTrack    = "kworb-charts-track"
	CategoryKworbArtist   = "kworb-charts-artist"
	CategoryKworbRegion   = "kworb-charts-region"
	dataDirName           = "data"
	rawDirName            = "raw"
	parsedDirName         = "parsed"
	consolidatedDirName   = "consolidated"
	dirPerm               = 0o0755
	filePerm              = 0o0644
)

// Root is the project root under which the data/{raw,parsed,consolidated}
// tree lives.
type Root string

func From(d string) Root {
	return Root(d)
}

func (r Root) path() string {
	return string(r)
}

func (r Root) Raw(category string) Dir {
	return Dir(filepath.Join(r.path(), dataDirName, rawDirName, category))
}

func (r Root) Parsed(category string) Dir {
	return Dir(filepath.Join(r.path(), dataDirName, parsedDirName, category))
}

func (r Root) Consolidated(category string) Dir {
	return Dir(filepath.Join(r.path(), dataDirName, consolidatedDirName, category))
}

type Dir string

func (d Dir) Path() string {
	return string(d)
}

func (d Dir) File(name, ext string) File {
	return File{Path: filepath.Join(d.Path(), name+ext)}
}

// Ensure creates the directory and its parents if missing.
func (d Dir) Ensure() error {
	if err := os.MkdirAll(d.Path(), dirPerm); nil != err {
		flawP := flaw.P{"dir_path": d.Path(), "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to create directory: %v", err)).Append(flawP)
	}
	return nil
}

type File struct {
	Path string
}

// Create truncates or creates the file, creating parent directories first.
func (f File) Create() (*os.File, error) {
	if err := Dir(filepath.Dir(f.Path)).Ensure(); nil != err {
		return nil, err
	}
	file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if nil != err {
		flawP := flaw.P{"file_path": f.Path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to open file for write: %v", err)).Append(flawP)
	}
	return file, nil
}

func (f File) WriteText(s string) (err error) {
	flawP := flaw.P{"file_path": f.Path}

	file, err := f.Create()
	if nil != err {
		return err
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close text file: %v", closeErr)).Append(flawP)
			err = must.JoinClose(err, closeErr)
		}
	}()

	if _, err := file.WriteString(s); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to write text file: %v", err)).Append(flawP)
	}
	return nil
}

func (f File) WriteJSON(v any) (err error) {
	flawP := flaw.P{"file_path": f.Path}

	file, err := f.Create()
	if nil != err {
		return err
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close json file: %v", closeErr)).Append(flawP)
			err = must.JoinClose(err, closeErr)
		}
	}()

	if err := json.NewEncoder(file).Encode(v); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to encode json file: %v", err)).Append(flawP)
	}

	if err := file.Sync(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to sync json file: %v", err)).Append(flawP)
	}
	return nil
}
