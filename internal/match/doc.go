// Package match scores candidate pairs between legacy schema items and ERP
// API schema items: (source table, target endpoint) and (source column,
// target field).
//
// Scoring is an explicit, ordered pipeline of strategies so the algorithm
// stays auditable strategy-by-strategy:
//  1. exact normalized-name equality -> 1.0
//  2. substring / qualifier-stripped containment -> 0.85
//  3. token-set similarity (Jaccard or edit-distance ratio) -> [0, 0.85)
//  4. bilingual synonym dictionary -> floor of 0.70 on match
//
// Results are deterministic for fixed inputs: no randomness, no wall clock.
package match
