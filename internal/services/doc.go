// Package services provides shared plumbing for external collaborators:
// the sentinel error taxonomy used to classify failures, context helpers
// that thread video/clip identity through the pipeline, and the Health
// record surfaced by readiness checks.
package services
