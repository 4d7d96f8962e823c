package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBEmptyDatabaseError
	DBNotConnectedError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError
	DBUnsupportedDriverError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaVersionError
	SchemaVersionTooOldError
	SchemaCollationError

	// Store errors
	StoreQueryError
	StoreInsertError
	StoreUpdateError
	StoreCommitError

	// Input errors
	InputHeaderError
	InputReadError
	FilterFileError

	// Backbone errors
	BinomialError
	UnparsableNameError
	AmbiguousSpeciesError
	AmbiguousGenusError
	HierarchyCycleError
	NodeNotFoundError
	CancelledError
)
