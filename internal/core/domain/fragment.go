package domain

import "time"

// MinFragmentLength is the minimum number of non-whitespace characters a
// paragraph must contain to become a Fragment. Shorter paragraphs carry too
// little semantic content to be worth embedding.
const MinFragmentLength = 10

// Fragment is the minimal retrievable unit of knowledge: a paragraph of an
// ingested document with a stable random identifier. Fragments are immutable
// once created.
type Fragment struct {
	// ID is a random 128-bit identifier (UUID). Random rather than
	// sequential so identifiers stay collision-free across partial re-runs.
	ID string

	// Content is the paragraph text.
	Content string

	// SourceURI is the document the fragment was extracted from.
	SourceURI string

	// CreatedAt is when the fragment was ingested.
	CreatedAt time.Time
}

// RawDocument is a source document as produced by a connector, before text
// extraction. Content holds the raw bytes; normalisers turn them into text.
type RawDocument struct {
	// URI is the document location (file path).
	URI string

	// MIMEType describes the raw content ("text/plain", "application/pdf").
	MIMEType string

	// Content is the raw document bytes.
	Content []byte
}
