// Package shared holds code used by more than one pipeline package that
// belongs to none of them. Today that is only testutil: source fixtures for
// the four input tables and a buffered slog handler for asserting on logs.
package shared
