// Package bridge exposes stores and embedders to a host runtime through
// opaque integer handles. Every call reports failure as false, an empty
// result or a zero count and logs the cause; no error or panic crosses the
// boundary.
package bridge
