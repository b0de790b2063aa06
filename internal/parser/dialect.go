package parser

import "regexp"

// dialectIndicators holds per-dialect syntax markers. Detection counts how
// many distinct markers appear and picks the dialect with the most hits.
var dialectIndicators = map[string][]*regexp.Regexp{
	"postgresql": {
		regexp.MustCompile(`(?i)\bSERIAL\b`),
		regexp.MustCompile(`(?i)\bBIGSERIAL\b`),
		regexp.MustCompile(`(?i)\bUUID\b`),
		regexp.MustCompile(`(?i)ON\s+CONFLICT`),
		regexp.MustCompile(`(?i)\bGENERATED\s+ALWAYS\b`),
		regexp.MustCompile(`(?i)USING\s+btree`),
	},
	"mysql": {
		regexp.MustCompile(`(?i)AUTO_INCREMENT`),
		regexp.MustCompile(`(?i)ENGINE\s*=\s*\w+`),
		regexp.MustCompile("`\\w+`"),
		regexp.MustCompile(`(?i)CHARACTER\s+SET`),
		regexp.MustCompile(`(?i)COLLATE\s+\w+`),
	},
	"oracle": {
		regexp.MustCompile(`(?i)\bNUMBER\s*\(`),
		regexp.MustCompile(`(?i)\bCLOB\b`),
		regexp.MustCompile(`(?i)\bVARCHAR2\b`),
		regexp.MustCompile(`(?i)\bCREATE\s+SEQUENCE`),
		regexp.MustCompile(`(?i)\bSYSDATE\b`),
		regexp.MustCompile(`(?i)\bTO_DATE\b`),
	},
	"firebird": {
		regexp.MustCompile(`(?i)BLOB\s+SUB_TYPE`),
		regexp.MustCompile(`(?i)SEGMENT\s+SIZE`),
		regexp.MustCompile(`(?i)COMPUTED\s+BY`),
		regexp.MustCompile(`(?i)\bGEN_ID\b`),
	},
}

// dialectOrder fixes the tie-break so detection is deterministic.
var dialectOrder = []string{"postgresql", "mysql", "oracle", "firebird"}

// DetectDialect guesses the SQL dialect of a dump by counting dialect
// specific markers. Returns "unknown" when nothing matches.
func DetectDialect(content string) string {
	best, bestScore := "unknown", 0

	for _, dialect := range dialectOrder {
		score := 0
		for _, re := range dialectIndicators[dialect] {
			if re.MatchString(content) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = dialect, score
		}
	}

	return best
}

// DialectScores returns the marker hit count per dialect, for diagnostics.
func DialectScores(content string) map[string]int {
	scores := make(map[string]int, len(dialectOrder))
	for _, dialect := range dialectOrder {
		for _, re := range dialectIndicators[dialect] {
			if re.MatchString(content) {
				scores[dialect]++
			}
		}
	}

	return scores
}
