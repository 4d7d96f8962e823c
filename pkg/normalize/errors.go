package normalize

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
)

// UnparsableNameError is returned when a genus cannot be found in a
// name-string.
func UnparsableNameError(name string) error {
	msg := "Cannot find a genus in <em>%s</em>"
	vars := []any{name}

	return &gn.Error{
		Code: errcode.UnparsableNameError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot normalize name '%s'", name),
	}
}
