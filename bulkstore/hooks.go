package bulkstore

import "github.com/bitshard/bulkstore/bulkrecord"

// Hooks is the lifecycle callback set a BulkStorage notifies as it
// mutates, in place of a logging library or an event-emitter interface —
// the source design's "expose a small set of named callbacks registered
// at construction" note. Every field is optional; a nil field is simply
// not invoked.
type Hooks struct {
	// OnAdded fires after a blob's record has been pushed into the live
	// table, before Add returns.
	OnAdded func(bulkrecord.FileRecord)

	// OnAborted fires when Add's source stream fails or is closed before
	// the encryptor finishes, after the file has been rolled back.
	OnAborted func(error)

	// OnWarning fires for non-fatal conditions worth surfacing, such as a
	// trailing partial record ignored by ManyFromBinary.
	OnWarning func(format string, args ...any)
}

func (h Hooks) added(r bulkrecord.FileRecord) {
	if h.OnAdded != nil {
		h.OnAdded(r)
	}
}

func (h Hooks) aborted(err error) {
	if h.OnAborted != nil {
		h.OnAborted(err)
	}
}

func (h Hooks) warning(format string, args ...any) {
	if h.OnWarning != nil {
		h.OnWarning(format, args...)
	}
}
