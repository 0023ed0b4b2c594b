package vectorstore

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Memory is an in-memory Index using cosine distance. It backs deployments
// without a Chroma instance and keeps tests hermetic.
type Memory struct {
	mu   sync.RWMutex
	docs []memoryDoc
}

type memoryDoc struct {
	id        string
	embedding []float64
	document  string
	metadata  map[string]interface{}
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	return nil
}

func (m *Memory) Add(ids []string, embeddings [][]float64, documents []string, metadatas []map[string]interface{}) error {
	if len(embeddings) != len(ids) || len(documents) != len(ids) || len(metadatas) != len(ids) {
		return fmt.Errorf("mismatched lengths: %d ids, %d embeddings, %d documents, %d metadatas",
			len(ids), len(embeddings), len(documents), len(metadatas))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range ids {
		m.docs = append(m.docs, memoryDoc{
			id:        ids[i],
			embedding: embeddings[i],
			document:  documents[i],
			metadata:  metadatas[i],
		})
	}
	return nil
}

func (m *Memory) Query(embedding []float64, k int) (*QueryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		doc      memoryDoc
		distance float64
	}
	ranked := make([]scored, 0, len(m.docs))
	for _, d := range m.docs {
		ranked = append(ranked, scored{doc: d, distance: 1 - cosineSimilarity(embedding, d.embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	result := &QueryResult{
		IDs:       make([]string, 0, k),
		Documents: make([]string, 0, k),
		Metadatas: make([]map[string]interface{}, 0, k),
		Distances: make([]float64, 0, k),
	}
	for _, r := range ranked[:k] {
		result.IDs = append(result.IDs, r.doc.id)
		result.Documents = append(result.Documents, r.doc.document)
		result.Metadatas = append(result.Metadatas, r.doc.metadata)
		result.Distances = append(result.Distances, r.distance)
	}
	return result, nil
}

func (m *Memory) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
