// Package dashboard composes the resolved runtime configuration and the
// per-source loaders into the view model served to the presentation layer.
package dashboard
