package summarizer

import (
	"math"
	"sort"
)

const (
	// Similarity above which two sentences are linked
	similarityThreshold = 0.1
	// Power iteration stops once successive score vectors are this close
	convergenceEpsilon = 0.1
	maxIterations      = 1000
)

// termFrequencies counts each word of a sentence, normalized by the count
// of the sentence's most frequent word.
func termFrequencies(words []string) map[string]float64 {
	counts := make(map[string]int, len(words))
	maxCount := 0
	for _, w := range words {
		counts[w]++
		if counts[w] > maxCount {
			maxCount = counts[w]
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	tf := make(map[string]float64, len(counts))
	for w, c := range counts {
		tf[w] = float64(c) / float64(maxCount)
	}
	return tf
}

// inverseDocumentFrequencies computes ln(N / (1 + n)) for every word, where
// N is the sentence count and n the number of sentences holding the word.
func inverseDocumentFrequencies(tfs []map[string]float64) map[string]float64 {
	containing := make(map[string]int)
	for _, tf := range tfs {
		for w := range tf {
			containing[w]++
		}
	}

	n := float64(len(tfs))
	idf := make(map[string]float64, len(containing))
	for w, c := range containing {
		idf[w] = math.Log(n / float64(1+c))
	}
	return idf
}

// cosineSimilarity is the idf-modified cosine between two sentences.
func cosineSimilarity(tf1, tf2, idf map[string]float64) float64 {
	numerator := 0.0
	for w, f1 := range tf1 {
		if f2, ok := tf2[w]; ok {
			numerator += f1 * f2 * idf[w] * idf[w]
		}
	}

	denominator1 := 0.0
	for w, f := range tf1 {
		denominator1 += (f * idf[w]) * (f * idf[w])
	}
	denominator2 := 0.0
	for w, f := range tf2 {
		denominator2 += (f * idf[w]) * (f * idf[w])
	}

	if denominator1 <= 0 || denominator2 <= 0 {
		return 0
	}
	return numerator / (math.Sqrt(denominator1) * math.Sqrt(denominator2))
}

// lexRank scores each sentence, given as its words, by its centrality in
// the thresholded similarity graph.
func lexRank(sentences [][]string) []float64 {
	n := len(sentences)
	if n == 0 {
		return nil
	}

	tfs := make([]map[string]float64, n)
	for i, words := range sentences {
		tfs[i] = termFrequencies(words)
	}
	idf := inverseDocumentFrequencies(tfs)

	matrix := make([][]float64, n)
	for row := range n {
		matrix[row] = make([]float64, n)
		degree := 0.0
		for col := range n {
			if cosineSimilarity(tfs[row], tfs[col], idf) > similarityThreshold {
				matrix[row][col] = 1
				degree++
			}
		}
		if degree == 0 {
			degree = 1
		}
		for col := range n {
			matrix[row][col] /= degree
		}
	}

	return powerMethod(matrix)
}

// powerMethod iterates p = Mᵀp from the uniform vector until the L2 change
// drops to convergenceEpsilon.
func powerMethod(matrix [][]float64) []float64 {
	n := len(matrix)
	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}

	for range maxIterations {
		next := make([]float64, n)
		for col := range n {
			for row := range n {
				next[col] += matrix[row][col] * p[row]
			}
		}

		change := 0.0
		for i := range n {
			d := next[i] - p[i]
			change += d * d
		}
		p = next

		if math.Sqrt(change) <= convergenceEpsilon {
			break
		}
	}

	return p
}

// topSentences returns the indexes of the count highest scores in document
// order. Equal scores keep document order.
func topSentences(scores []float64, count int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if count < len(order) {
		order = order[:count]
	}
	sort.Ints(order)
	return order
}
