// Package mapper assembles per-table mapping drafts from fuzzy-match
// candidates and accepts review edits.
//
// Mapping pipeline:
//  1. Registry holds the discovered source schema and the synced target schema.
//  2. For each source table, pick the top endpoint candidate above threshold;
//     tables with no qualifying endpoint are marked SKIP with a rationale.
//  3. For each column of a mapped table, pick the top field candidate above
//     threshold; detect many-to-one and one-to-many groupings before
//     committing competing one-to-one picks.
//  4. Human review edits mappings in place; any edit reverts the owning
//     table to draft so the validation gate re-checks it.
package mapper
