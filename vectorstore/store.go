package vectorstore

// QueryResult holds the nearest documents for a query embedding, ordered by
// ascending distance.
type QueryResult struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]interface{}
	Distances []float64
}

// Index is a vector index over documents with caller-supplied embeddings.
// Implementations are safe for concurrent use.
type Index interface {
	// Clear removes every document from the index.
	Clear() error

	// Add inserts documents with their embeddings. All slices must have the
	// same length.
	Add(ids []string, embeddings [][]float64, documents []string, metadatas []map[string]interface{}) error

	// Query returns up to k nearest documents by distance.
	Query(embedding []float64, k int) (*QueryResult, error)

	// Count returns the number of indexed documents.
	Count() (int, error)
}
