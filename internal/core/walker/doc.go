// Package walker finds candidate configuration files for an application.
//
// A walk starts in a directory and moves toward the filesystem root,
// recording every configured file name present in each directory. It stops
// after a root, a stop directory, or a directory containing a stop peer
// (typically .git). Unless disabled, the per-user configuration directory
// of the application is consulted last.
//
// Candidates come back nearest first: the start directory's files precede
// its parent's, and user-scope files come after every walked directory.
package walker
