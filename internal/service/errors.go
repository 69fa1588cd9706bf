package service

import "errors"

var (
	// ErrUnauthorized rejects privileged operations attempted by
	// anyone but the configured admin id.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidAmount rejects non-positive credit or settlement
	// amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidSettlementKind rejects settlement callbacks with an
	// unknown kind.
	ErrInvalidSettlementKind = errors.New("invalid settlement kind")

	// ErrInvalidDraft rejects ingestion drafts missing the external
	// reference or display name.
	ErrInvalidDraft = errors.New("invalid asset draft")
)
