// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error classes for the turn pipeline. Every failure is single-attempt and
// wraps exactly one of these sentinels so callers can classify with
// errors.Is. Empty search results are not an error and never reach this
// taxonomy.
var (
	// ErrConfig marks a missing credential or other operator-facing
	// configuration problem.
	ErrConfig = errors.New("configuration error")

	// ErrRetrieval marks a failed search, summary, or abstract lookup
	// (network, non-2xx status, or malformed payload).
	ErrRetrieval = errors.New("retrieval failure")

	// ErrGeneration marks a failed completion-service call.
	ErrGeneration = errors.New("generation failure")
)
