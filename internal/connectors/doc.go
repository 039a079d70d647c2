// Package connectors holds the source enumeration adapters: the filesystem
// connector for knowledge documents and the transcript source for the
// category directories. Both are polled on a fixed interval and diffed
// against a persisted ledger rather than watching filesystem events.
package connectors
