package dashboard

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// recordDocument is the searchable projection of one record.
type recordDocument struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Status   string `json:"status"`
	Content  string `json:"content"`
}

// SearchHit is a full-text match with its relevance score.
type SearchHit struct {
	RecordID uuid.UUID
	Score    float64
}

// SearchIndex provides typo-tolerant full-text search over records using an
// in-memory Bleve index. It complements the exact substring Filter for large
// record sets.
type SearchIndex struct {
	index   bleve.Index
	indexMu sync.RWMutex
}

// NewSearchIndex creates an in-memory record search index.
func NewSearchIndex() (*SearchIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &SearchIndex{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("file_name", textFieldMapping)
	docMapping.AddFieldMappingsAt("status", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("content", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// Index adds or replaces a record in the search index.
func (si *SearchIndex) Index(rec *record.Record) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	var content []string
	for _, v := range rec.ExtractedValues {
		content = append(content, stringify(v))
	}
	doc := recordDocument{
		ID:       rec.ID.String(),
		FileName: rec.FileName,
		Status:   string(rec.Status),
		Content:  strings.Join(content, " "),
	}
	if err := si.index.Index(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to index record %s: %w", rec.ID, err)
	}
	return nil
}

// Remove deletes a record from the search index.
func (si *SearchIndex) Remove(id uuid.UUID) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()
	if err := si.index.Delete(id.String()); err != nil {
		return fmt.Errorf("failed to remove record %s from index: %w", id, err)
	}
	return nil
}

// Search runs a fuzzy match query and returns record ids ordered by score.
func (si *SearchIndex) Search(query string, limit int) ([]SearchHit, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 25
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit

	result, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		hits = append(hits, SearchHit{RecordID: id, Score: hit.Score})
	}
	return hits, nil
}

// Close releases the index resources.
func (si *SearchIndex) Close() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()
	return si.index.Close()
}
