package engine

import "errors"

// Sentinel kinds for ingestion errors. Transport layers map these to stable
// outward error codes; nothing is retried or downgraded inside the engine.
var (
	// ErrInvalidMutation marks a malformed mutation, e.g. a missing payload
	// on create/update or an unsupported mutation type.
	ErrInvalidMutation = errors.New("invalid mutation")

	// ErrNotFound marks an update/delete whose target cannot be located by
	// server or client event id. The caller must resync before retrying.
	ErrNotFound = errors.New("event not found")

	// ErrSeqConflict marks a create proposing a sequence slot already held
	// by a different live event. The caller is expected to resync and
	// resubmit at a corrected sequence, not blindly retry.
	ErrSeqConflict = errors.New("sequence conflict")
)
