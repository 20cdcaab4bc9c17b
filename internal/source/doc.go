// Package source owns the fetch lifecycle of one backend data source.
//
// A Loader runs one cycle per trigger: it marks its state loading, fetches
// the record list from its endpoint and applies the outcome. Every cycle gets
// a generation number and its own cancellable context. Starting a new cycle
// cancels the previous one, and an outcome is applied only while its
// generation is still the loader's current one, so a late answer from a
// superseded or torn-down cycle never reaches the state.
//
// The dashboard runs one Loader per backend; both share this implementation
// and differ only in the endpoint they are given and the path their
// HTTPFetcher appends.
package source
