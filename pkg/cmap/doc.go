// Package cmap provides a concurrent map implementation for sumconf.
//
// The map is sharded by a murmur3 hash of the key; each shard is guarded
// by its own RWMutex:
//
//	m := cmap.New[[]string]()
//	m.Set("/home/user/project", []string{".git", "package.json"})
//	names, ok := m.Get("/home/user/project")
//
// All operations are thread-safe. Concurrent Set calls on the same key
// are resolved last-write-wins.
package cmap
