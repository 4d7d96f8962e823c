package iosql

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/errcode"
)

// QueryError creates an error for a failed read of the store.
func QueryError(what string, err error) error {
	msg := "Cannot read <em>%s</em> from the database"
	vars := []any{what}

	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to query %s: %w", what, err),
	}
}

// InsertError creates an error for a failed insert.
func InsertError(table string, err error) error {
	msg := `Cannot insert a record into <em>%s</em>

<em>Possible causes:</em>
  - The record violates a unique index
  - The schema is outdated, run <em>gnbackbone migrate</em>`
	vars := []any{table}

	return &gn.Error{
		Code: errcode.StoreInsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to insert into %s: %w", table, err),
	}
}

// UpdateError creates an error for a failed update.
func UpdateError(table string, id int, err error) error {
	msg := "Cannot update record <em>%d</em> of <em>%s</em>"
	vars := []any{id, table}

	return &gn.Error{
		Code: errcode.StoreUpdateError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to update %s %d: %w", table, id, err),
	}
}

// CommitError creates an error for a failed transaction.
func CommitError(err error) error {
	msg := "Cannot save a batch of changes to the database"

	return &gn.Error{
		Code: errcode.StoreCommitError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to commit transaction: %w", err),
	}
}
