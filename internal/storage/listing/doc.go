// Package listing provides the directory listing cache used by the walker.
//
// A listing is the set of entry names of one directory. Listings are read
// once through a Lister and served from memory afterwards, so repeated
// gathers in one process touch each directory at most once until the cache
// is cleared. The cache is backed by the sharded pkg/cmap map and is safe
// for concurrent gathers. Failed listings are never cached.
package listing
