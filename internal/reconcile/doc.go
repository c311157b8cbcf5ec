// Package reconcile merges partial records into the final record.
//
// Partials are applied in ascending origin rank, so embedded and direct
// metadata override sidecars. Within a rank the later partial wins, field
// by field. An explicitly empty value is a statement and overrides; an
// absent one never does.
package reconcile
