// Package bridge owns the controller-facing side of the process.
//
// Ownership boundary:
// - accepting controller connections
// - the per-connection read -> extract -> parse -> map -> invoke -> close run
// - the fail-fast policy: recoverable input and hub errors close one
//   connection, anything else stops the process through ErrFatal
//
// Connections never share mutable state. The peer never receives a reply.
package bridge
