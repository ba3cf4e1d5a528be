// Package hass owns the outbound side of the bridge.
//
// Ownership boundary:
// - mapping parsed commands onto hub domain/service/payload triples
// - the one-shot REST call against the hub and its outcome classification
// - hub credential inspection at startup
//
// hass never retries and never queues; every call is attempted once.
package hass
