package kernel

import "fmt"

// ExpectedVersion declares the caller's expectation about an aggregate's
// current version for optimistic concurrency control.
type ExpectedVersion struct {
	value int64
}

const expectedVersionAny = -1

// AnyVersion skips the version check. Used by the scheduler, which acts
// on whatever the current state is rather than on a version a client saw.
func AnyVersion() ExpectedVersion {
	return ExpectedVersion{value: expectedVersionAny}
}

// Exact requires the aggregate to be at exactly the given version.
func Exact(version int64) ExpectedVersion {
	if version < 0 {
		panic(fmt.Sprintf("exact version must be non-negative, got %d", version))
	}
	return ExpectedVersion{value: version}
}

// IsAny reports whether the version check is skipped.
func (ev ExpectedVersion) IsAny() bool { return ev.value == expectedVersionAny }

// Value returns the exact expected version; 0 for AnyVersion.
func (ev ExpectedVersion) Value() int64 {
	if ev.value < 0 {
		return 0
	}
	return ev.value
}

// Check compares the expectation against a loaded snapshot and returns a
// ConflictError on mismatch. It must run before any mutation is attempted.
func (ev ExpectedVersion) Check(snap *Snapshot) error {
	if ev.IsAny() {
		return nil
	}
	if snap.Version != ev.value {
		return &ConflictError{Expected: ev.value, Found: snap.Version}
	}
	return nil
}
