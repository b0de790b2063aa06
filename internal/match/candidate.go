package match

import (
	"sort"
	"strings"

	"erp-migrator/internal/schema"
)

// DefaultThreshold is the minimum confidence for a candidate to be offered
// as a default mapping. Lower-scoring candidates are still computed and kept
// for manual browsing during review.
const DefaultThreshold = 0.70

const (
	containsScore  = 0.85
	similarCeiling = 0.84 // strategy 3 stays strictly below containment
	synonymFloor   = 0.70
)

// Rationale tags the strategy that produced a candidate's confidence.
type Rationale string

const (
	RationaleExact    Rationale = "exact"
	RationaleContains Rationale = "contains"
	RationaleSimilar  Rationale = "similar"
	RationaleSynonym  Rationale = "synonym"
)

// Candidate is a scored suggestion pairing a source item with a target item.
// Candidates are never mutated after creation.
type Candidate struct {
	// Source is the source table or column name.
	Source string `json:"source"`
	// Target is the endpoint path or field name.
	Target     string    `json:"target"`
	Confidence float64   `json:"confidence"`
	Rationale  Rationale `json:"rationale"`
	// Compat breaks ties between equal confidences; for table candidates it
	// is always Exact (tables carry no type).
	Compat Compatibility `json:"-"`

	// order is the target's declaration index, the final stable tie-break.
	order int
}

// CandidateList is a ranked list of candidates, best first.
type CandidateList []Candidate

// Best returns the top candidate, or nil for an empty list.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// AboveThreshold returns the leading candidates with confidence >= threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var out CandidateList
	for _, cand := range c {
		if cand.Confidence >= threshold {
			out = append(out, cand)
		}
	}

	return out
}

// rank orders candidates by confidence descending, then exact type
// compatibility over merely present, then target declaration order. The
// ordering is total, so matcher output is identical across runs.
func (c CandidateList) rank() {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Confidence != c[j].Confidence {
			return c[i].Confidence > c[j].Confidence
		}
		if c[i].Compat != c[j].Compat {
			return c[i].Compat > c[j].Compat
		}

		return c[i].order < c[j].order
	})
}

// Matcher produces ranked candidate lists against the registered target
// schema. It is a pure function of its inputs: safe for concurrent use.
type Matcher struct {
	reg *schema.Registry
}

func NewMatcher(reg *schema.Registry) *Matcher {
	return &Matcher{reg: reg}
}

// MatchTables ranks every target endpoint against a source table name.
// An endpoint is matched on both its entity name and the trailing segment
// of its path; the better of the two scores wins.
func (m *Matcher) MatchTables(table *schema.SourceTable) (CandidateList, error) {
	if err := m.reg.Ready(); err != nil {
		return nil, err
	}

	target := m.reg.Target()
	cands := make(CandidateList, 0, len(target.Endpoints))

	for i := range target.Endpoints {
		ep := &target.Endpoints[i]

		score, rationale := ScoreNames(table.Name, ep.Entity)
		if pathScore, pathRationale := ScoreNames(table.Name, lastPathSegment(ep.Path)); pathScore > score {
			score, rationale = pathScore, pathRationale
		}

		cands = append(cands, Candidate{
			Source:     table.Name,
			Target:     ep.Path,
			Confidence: score,
			Rationale:  rationale,
			Compat:     Exact,
			order:      i,
		})
	}

	cands.rank()

	return cands, nil
}

// MatchColumns ranks every field of the given endpoint against a source
// column, factoring type compatibility into the tie-break only.
func (m *Matcher) MatchColumns(col *schema.SourceColumn, endpointPath string) (CandidateList, error) {
	ep, err := m.reg.TargetEndpoint(endpointPath)
	if err != nil {
		return nil, err
	}

	cands := make(CandidateList, 0, len(ep.Fields))
	for i := range ep.Fields {
		field := &ep.Fields[i]
		score, rationale := ScoreNames(col.Name, field.Name)

		cands = append(cands, Candidate{
			Source:     col.Name,
			Target:     field.Name,
			Confidence: score,
			Rationale:  rationale,
			Compat:     TypeCompatibility(col, field),
			order:      i,
		})
	}

	cands.rank()

	return cands, nil
}

// ScoreNames runs the scoring pipeline over one source/target name pair and
// returns the confidence with the rationale of the winning strategy.
func ScoreNames(source, target string) (float64, Rationale) {
	ns := NormalizeName(source)
	nt := NormalizeName(target)

	if ns == "" || nt == "" {
		return 0, RationaleSimilar
	}

	// Strategy 1: exact normalized equality.
	if ns == nt {
		return 1.0, RationaleExact
	}

	// Strategy 2: containment. Either one normalized name contains the
	// other, or the names agree once qualifier tokens are stripped
	// ("first_name" vs "full_name" both reduce to "name"). The stripped
	// comparison is capped here because the reduction is lossy.
	score, rationale := 0.0, RationaleSimilar
	if strings.Contains(ns, nt) || strings.Contains(nt, ns) {
		score, rationale = containsScore, RationaleContains
	} else if ss, st := NormalizeNameStripped(source), NormalizeNameStripped(target); ss != "" && ss == st {
		score, rationale = containsScore, RationaleContains
	}

	// Strategy 3: token-set similarity, scaled to stay below containment.
	if score < containsScore {
		sim := jaccard(Tokenize(source), Tokenize(target))
		if ratio := LevenshteinRatio(ns, nt); ratio > sim {
			sim = ratio
		}
		if s := sim * similarCeiling; s > score {
			score, rationale = s, RationaleSimilar
		}
	}

	// Strategy 4: synonym dictionary floor.
	if score < synonymFloor && Synonyms(ns, nt) {
		score, rationale = synonymFloor, RationaleSynonym
	}

	return score, rationale
}

// jaccard computes token-set similarity: intersection size over union size.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[singularize(t)] = true
	}

	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[singularize(t)] = true
	}

	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}

	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}

	return float64(inter) / float64(union)
}

func lastPathSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}

	return path
}
