// Package diagnostic defines the finding type shared by mapping validation
// and payload resolution. Findings are collected and returned as data, never
// raised, so a reviewer sees every problem in one pass.
package diagnostic
