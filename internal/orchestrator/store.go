package orchestrator

import "github.com/billysbar/tlmerge/internal/extract"

// Store is the identity store adapter the orchestrator writes finished
// metadata through. It is the orchestrator's own view of its one
// collaborator allowed to touch the database -- the concrete
// implementation (schema, camera/lens dedup, flush/commit discipline)
// lives in internal/store and is injected here so this package can be
// tested against a fake.
type Store interface {
	// Apply upserts one photo's metadata: insert if the (date, group,
	// file_name) key is new, overwrite in place otherwise, re-resolving
	// Camera/Lens identity per call. created and updated report which case
	// occurred, for the end-of-run summary line; both are false when the
	// existing row's columns already matched meta exactly.
	Apply(meta *extract.PhotoMetadata) (created, updated bool, err error)
	// Flush persists pending writes without ending the transaction,
	// called after every photo so in-memory state stays bounded.
	Flush() error
	// Commit ends the transaction. Called exactly once, after every
	// queued photo has been applied.
	Commit() error
}
