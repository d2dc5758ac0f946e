// Package storage groups the key-value store backends behind ports.KeyValueStore.
//
// Three backends are available:
//
//   - sqlite: the default durable store, a single kv table
//   - file: a JSON object file guarded by a lock file, with change watching
//   - memory: a map, used for the session store and in tests
//
// Open picks a durable backend from configuration.
package storage
