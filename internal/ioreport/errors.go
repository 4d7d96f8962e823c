package ioreport

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
)

// WriteFileError is returned when a report cannot be written.
func WriteFileError(path string, err error) error {
	msg := "Cannot write report <em>%s</em>"
	vars := []any{path}

	return &gn.Error{
		Code: errcode.WriteFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot write %s: %w", path, err),
	}
}
