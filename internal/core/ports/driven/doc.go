// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding and completion services, persistent
// stores, document connectors and normalisers. Core services depend on these
// interfaces; the adapters packages implement them.
package driven
