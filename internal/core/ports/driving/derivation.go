package driving

import "context"

// TranscriptProcessor derives agent configuration artifacts from new
// conversation transcripts.
type TranscriptProcessor interface {
	// ProcessNew scans the category directories for transcripts absent from
	// the ledger and processes them in category order, one at a time. It
	// returns the number of transcripts processed. Per-item failures are
	// logged and do not abort the scan.
	ProcessNew(ctx context.Context) (int, error)
}
