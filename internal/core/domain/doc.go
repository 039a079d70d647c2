// Package domain contains the core business entities and rules for the
// VoiceForge knowledge pipeline: fragments of ingested knowledge, transcript
// categories, the generated agent configuration, and the errors that cross
// layer boundaries.
package domain
