package log

import (
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileMaxSizeMB  = 50
	fileMaxBackups = 10
	fileMaxAgeDays = 30
)

// NewFileWriter returns a rotating writer at <dir>/<name>/<file>.log. The
// directory tree is created on first write.
func NewFileWriter(dir, name, file string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name, file+".log"),
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
		Compress:   true,
		LocalTime:  false,
	}
}
