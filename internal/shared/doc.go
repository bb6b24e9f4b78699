// Package shared holds cross-cutting helpers that do not belong to any
// single domain package.
//
// The testutil subpackage provides a buffered slog handler plus
// assertion helpers for tests that need to inspect what a component
// logged rather than just what it returned.
//
// Code here must stay free of business logic and of dependencies on
// other internal packages.
package shared
