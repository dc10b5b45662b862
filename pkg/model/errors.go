package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrInvalidRecord marks validation failures. Records rejected with
	// this error are never partially persisted.
	ErrInvalidRecord = goerr.New("invalid record")

	ErrInvalidEnvironment = goerr.New("invalid environment")
	ErrInvalidRecordKind  = goerr.New("invalid record kind")
)
