package vectorstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// addBatchSize caps how many documents go into a single /add request.
const addBatchSize = 100

// Chroma implements Index against the Chroma vector database v2 REST API.
// Embeddings are supplied by the caller, as Chroma v2 requires.
type Chroma struct {
	baseURL        string
	tenant         string
	database       string
	collectionName string
	collectionID   string
	httpClient     *http.Client
}

// ChromaConfig holds configuration for a Chroma connection.
type ChromaConfig struct {
	Host           string
	Port           int
	CollectionName string
}

type chromaQueryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Distances [][]float64                `json:"distances"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Documents [][]string                 `json:"documents"`
}

// NewChroma connects to Chroma and gets or creates the named collection.
func NewChroma(config ChromaConfig) (*Chroma, error) {
	c := &Chroma{
		baseURL:        fmt.Sprintf("http://%s:%d/api/v2", config.Host, config.Port),
		tenant:         "default_tenant",
		database:       "default_database",
		collectionName: config.CollectionName,
		httpClient:     &http.Client{},
	}

	collectionID, err := c.getOrCreateCollection(config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection: %w", err)
	}
	c.collectionID = collectionID
	return c, nil
}

func (c *Chroma) getOrCreateCollection(name string) (string, error) {
	// Try to get existing collection
	url := fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s", c.baseURL, c.tenant, c.database, name)
	resp, err := c.httpClient.Get(url)

	if err == nil && resp.StatusCode == http.StatusOK {
		defer resp.Body.Close()
		var result map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", err
		}
		id, ok := result["id"].(string)
		if !ok {
			return "", fmt.Errorf("collection response missing id")
		}
		log.Printf("Using existing collection: %s", name)
		return id, nil
	}

	log.Printf("Creating new collection: %s", name)
	createURL := fmt.Sprintf("%s/tenants/%s/databases/%s/collections", c.baseURL, c.tenant, c.database)
	payload := map[string]interface{}{
		"name": name,
		"metadata": map[string]interface{}{
			"description": "News highlight retrieval collection",
		},
		"get_or_create": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err = c.httpClient.Post(createURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to create collection (status %d): %s", resp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("create collection response missing id")
	}
	return id, nil
}

func (c *Chroma) collectionURL() string {
	return fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s", c.baseURL, c.tenant, c.database, c.collectionID)
}

// Clear removes every document in the collection.
func (c *Chroma) Clear() error {
	payload := map[string]interface{}{
		"where": map[string]interface{}{},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(fmt.Sprintf("%s/delete", c.collectionURL()), "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to clear collection: %s", string(body))
	}
	return nil
}

// Add inserts documents with caller-supplied embeddings, batching large sets.
func (c *Chroma) Add(ids []string, embeddings [][]float64, documents []string, metadatas []map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	if len(embeddings) != len(ids) || len(documents) != len(ids) || len(metadatas) != len(ids) {
		return fmt.Errorf("mismatched lengths: %d ids, %d embeddings, %d documents, %d metadatas",
			len(ids), len(embeddings), len(documents), len(metadatas))
	}

	for start := 0; start < len(ids); start += addBatchSize {
		end := start + addBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		payload := map[string]interface{}{
			"ids":        ids[start:end],
			"embeddings": embeddings[start:end],
			"documents":  documents[start:end],
			"metadatas":  metadatas[start:end],
		}
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Post(fmt.Sprintf("%s/add", c.collectionURL()), "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("failed to add documents: %w", err)
		}

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("failed to add documents: %s", string(body))
		}
		resp.Body.Close()
	}

	log.Printf("Added %d documents to collection", len(ids))
	return nil
}

// Query returns up to k nearest documents for the embedding.
func (c *Chroma) Query(embedding []float64, k int) (*QueryResult, error) {
	payload := map[string]interface{}{
		"query_embeddings": [][]float64{embedding},
		"n_results":        k,
		"include":          []string{"metadatas", "documents", "distances"},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(fmt.Sprintf("%s/query", c.collectionURL()), "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to query collection: %s", string(body))
	}

	var raw chromaQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	// Chroma nests per-query rows; a single query embedding yields one row.
	result := &QueryResult{}
	if len(raw.IDs) > 0 {
		result.IDs = raw.IDs[0]
	}
	if len(raw.Documents) > 0 {
		result.Documents = raw.Documents[0]
	}
	if len(raw.Metadatas) > 0 {
		result.Metadatas = raw.Metadatas[0]
	}
	if len(raw.Distances) > 0 {
		result.Distances = raw.Distances[0]
	}
	return result, nil
}

// Count returns the number of documents in the collection.
func (c *Chroma) Count() (int, error) {
	resp, err := c.httpClient.Get(fmt.Sprintf("%s/count", c.collectionURL()))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("failed to count documents: %s", string(body))
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, err
	}
	return count, nil
}
