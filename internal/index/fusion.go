package index

// normalizeScores normalizes scores to [0,1] by max. Nil-safe.
func normalizeScores(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return raw
	}
	var max float64
	for _, s := range raw {
		if s > max {
			max = s
		}
	}
	if max <= 0 {
		return raw
	}
	normalized := make(map[string]float64, len(raw))
	for id, s := range raw {
		normalized[id] = s / max
	}
	return normalized
}

// fuseScores combines normalized keyword and semantic scores per chunk with
// the given weights. A chunk present in only one map still gets its weighted
// contribution from that map.
func fuseScores(keyword, semantic map[string]float64, keywordWeight, semanticWeight float64) map[string]float64 {
	fused := make(map[string]float64, len(keyword)+len(semantic))
	for id, s := range keyword {
		fused[id] += keywordWeight * s
	}
	for id, s := range semantic {
		fused[id] += semanticWeight * s
	}
	return fused
}
