// Package main provides the entry point for sumconf.
//
// sumconf finds the configuration files of an application in the current
// directory and its parents, plus the per-user configuration directory,
// and prints their combination.
//
// Usage:
//
//	sumconf [global flags] [get] [flags] <packageName>
//	sumconf -o json get -s myapp
//	sumconf defaults myapp
//	sumconf watch myapp
package main
