// Package answer generates replies to user questions via Gemini.
//
// The client grounds answers in a structured FAQ document (see cmd/kb-convert)
// and enforces the answer language through the prompt. Transient failures
// (5xx, quota) are retried on a short fixed schedule; the final attempt drops
// the FAQ context to shrink the payload. Callers see only the end result:
// generated text, or an empty string when generation failed.
package answer
