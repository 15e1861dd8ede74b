package logging

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// SourceFieldName is the field carrying "file.go:line" of the caller.
const SourceFieldName = "x_file_source"

// SourceFormatter adds a short caller location and delegates to Underlying.
type SourceFormatter struct {
	Underlying logrus.Formatter
	// AddSpace appends an empty line after every entry.
	AddSpace bool
}

func (f *SourceFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		entry.Data[SourceFieldName] = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	formatted, err := f.Underlying.Format(entry)
	if err != nil {
		return nil, err
	}
	if f.AddSpace {
		formatted = append(formatted, '\n')
	}
	return formatted, nil
}
