// Package vectorstore defines the embedding store abstraction used by the
// ingestion, pairing, and clustering components, together with the on-disk
// record encoding shared by its implementations.
//
// The Store interface covers exactly three operations: idempotent Upsert,
// Retrieve with an explicit legacy-id fallback chain, and cosine-ranked
// Search with metadata-equality filtering. The backing service is treated
// as external; the badger sub-package provides a local implementation
// suitable for single-node deployments and tests.
package vectorstore
