package iomem

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
)

// DuplicateError is returned when a record violates a uniqueness
// constraint of the in-memory store.
func DuplicateError(table string, id int) error {
	msg := "Record <em>%d</em> already exists in <em>%s</em>"
	vars := []any{id, table}
	return &gn.Error{
		Code: errcode.StoreInsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("duplicate record %d in %s", id, table),
	}
}

// NotFoundError is returned when an update targets a missing record.
func NotFoundError(table string, id int) error {
	msg := "Record <em>%d</em> not found in <em>%s</em>"
	vars := []any{id, table}
	return &gn.Error{
		Code: errcode.StoreUpdateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("record %d not found in %s", id, table),
	}
}
