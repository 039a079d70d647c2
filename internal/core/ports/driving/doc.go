// Package driving provides interfaces for application entry points
// (primary/inbound ports). The CLI and the conversation runtime call core
// services through these interfaces.
package driving
