// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Four services make up the pipeline: ingestion, retrieval, transcript
// derivation and the scheduler that drives the periodic re-checks.
package services
