// Package cache gates the expensive join behind a stored copy of its result.
//
// LoadOrCompute returns the stored table when one exists and otherwise runs
// the compute function and stores what it returns. A hit never calls compute
// and never writes, so repeated runs leave the stored file untouched.
//
// There is no invalidation. A stale cache is refreshed by deleting the file.
package cache
