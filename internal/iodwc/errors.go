package iodwc

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
)

// InputHeaderError is returned when required columns are missing.
func InputHeaderError(path string, missing []string) error {
	msg := `Taxa file <em>%s</em> misses required columns: <em>%s</em>

<em>Hint:</em> check the delimiter, use <em>--delimiter</em> for TSV files`
	cols := strings.Join(missing, ", ")
	vars := []any{path, cols}

	return &gn.Error{
		Code: errcode.InputHeaderError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("missing columns in %s: %s", path, cols),
	}
}

// InputReadError is returned when the taxa file cannot be read or
// parsed.
func InputReadError(path string, line int, err error) error {
	msg := "Cannot read taxa file <em>%s</em> at line %d"
	vars := []any{path, line}

	return &gn.Error{
		Code: errcode.InputReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read %s at line %d: %w", path, line, err),
	}
}

// FilterFileError is returned when the allow-list file is unreadable
// or is not a rank-keyed YAML map.
func FilterFileError(path string, err error) error {
	msg := `Cannot load filter file <em>%s</em>

<em>Expected format:</em>
  family:
    - Fringillidae
    - Plantaginaceae`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.FilterFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot load filter %s: %w", path, err),
	}
}
