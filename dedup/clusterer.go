package dedup

import (
	"fmt"
	"log"
	"math"

	"newsbrief/embeddings"
	"newsbrief/types"
)

const (
	// embedBodyChars caps how much of the body feeds the embedding text.
	embedBodyChars = 500

	// minClusterSize is the DBSCAN minPts: a story needs at least two
	// articles to form a duplicate group.
	minClusterSize = 2
)

// Clusterer groups articles into duplicate clusters using text embeddings.
type Clusterer struct {
	embedder  embeddings.Provider
	threshold float64
}

// NewClusterer builds a clusterer. threshold is the cosine similarity above
// which two articles count as the same story.
func NewClusterer(embedder embeddings.Provider, threshold float64) *Clusterer {
	return &Clusterer{embedder: embedder, threshold: threshold}
}

// Cluster annotates records in place with duplicate-group membership and
// returns the same slice; no record is ever dropped. Within each group the
// member with the lowest input index stays the primary, the rest are marked
// duplicates, and all members share one group id. Any embedding or clustering
// failure fails open: the records come back unmodified and the pipeline
// continues without duplicate detection.
func (c *Clusterer) Cluster(records []*types.Article) []*types.Article {
	if len(records) < 2 {
		return records
	}

	log.Printf("Detecting duplicates among %d articles...", len(records))

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Title + " " + truncateRunes(r.Body, embedBodyChars)
	}

	vectors, err := c.embedder.EmbedTexts(texts)
	if err != nil {
		log.Printf("Warning: duplicate detection failed, returning articles unclustered: %v", err)
		return records
	}
	if len(vectors) != len(records) {
		log.Printf("Warning: duplicate detection failed, returning articles unclustered: got %d embeddings for %d articles", len(vectors), len(records))
		return records
	}

	dist, err := distanceMatrix(vectors)
	if err != nil {
		log.Printf("Warning: duplicate detection failed, returning articles unclustered: %v", err)
		return records
	}

	eps := 1 - c.threshold
	labels := DBSCAN(dist, eps, minClusterSize)

	groups := 0
	seen := make(map[int]bool)
	for i, label := range labels {
		if label == Noise {
			continue
		}
		if !seen[label] {
			seen[label] = true
			groups++
			// First member in scan order is the primary for this cluster.
			records[i].DuplicateGroupID = fmt.Sprintf("group_%d", label)
			continue
		}
		records[i].IsDuplicate = true
		records[i].DuplicateGroupID = fmt.Sprintf("group_%d", label)
	}

	log.Printf("Found %d duplicate groups", groups)
	return records
}

// distanceMatrix converts embeddings into pairwise cosine distances, clipped
// to be non-negative with a zero diagonal to counter floating-point drift.
func distanceMatrix(vectors [][]float64) ([][]float64, error) {
	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		if len(v) != len(vectors[0]) {
			return nil, fmt.Errorf("embedding dimension mismatch at index %d", i)
		}
		norms[i] = math.Sqrt(dot(v, v))
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := 0.0
			if norms[i] > 0 && norms[j] > 0 {
				sim = dot(vectors[i], vectors[j]) / (norms[i] * norms[j])
			}
			d := 1 - sim
			if d < 0 {
				d = 0
			}
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
