// internal/registry/store.go
package registry

import "context"

// Store is the activity registry: a named set of activities with
// participant lists. Every mutation is a single atomic read-modify-write;
// implementations must be safe for concurrent use.
//
// Operations return StandardError values from internal/common/errors:
// ACTIVITY_NOT_FOUND for an unknown activity, ALREADY_SIGNED_UP for a
// duplicate signup, NOT_SIGNED_UP for removing an absent participant, and
// ACTIVITY_FULL when capacity enforcement is on and the activity is full.
type Store interface {
	// List returns a copy of the full name -> activity mapping.
	List(ctx context.Context) (map[string]Activity, error)

	// Signup appends email to the activity's participant list,
	// preserving signup order.
	Signup(ctx context.Context, activity, email string) error

	// Unregister removes email from the activity's participant list.
	Unregister(ctx context.Context, activity, email string) error
}

// Config holds registry policy shared by all store implementations.
type Config struct {
	// EnforceCapacity makes Signup reject participants once
	// max_participants is reached. Off by default: the reference
	// behavior records signups past capacity.
	EnforceCapacity bool
}
