package state

import "errors"

// Snapshot schema versions. Increment CurrentSnapshotVersion and add a
// decoder to Migrate whenever the stored layout changes.
const (
	SnapshotVersionNone uint32 = 0
	SnapshotVersionV1   uint32 = 1

	CurrentSnapshotVersion = SnapshotVersionV1
)

var (
	// ErrSnapshotChecksum indicates the payload does not match the digest
	// recorded in the envelope.
	ErrSnapshotChecksum = errors.New("state: snapshot checksum mismatch")
	// ErrSnapshotCorrupt indicates a recognised payload could not be decoded
	// into a consistent state.
	ErrSnapshotCorrupt = errors.New("state: snapshot corrupt")
	// ErrSnapshotUnknownVersion indicates the envelope carries a schema tag
	// this build cannot decode, typically one written by a newer release.
	ErrSnapshotUnknownVersion = errors.New("state: unknown snapshot version")
)

// KnownSnapshotVersion reports whether Migrate can decode the given tag.
func KnownSnapshotVersion(version uint32) bool {
	switch version {
	case SnapshotVersionV1:
		return true
	default:
		return false
	}
}
