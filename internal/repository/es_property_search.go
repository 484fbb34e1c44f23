package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/pkg/log"
)

// esTextFields are the document fields matched by TextSearch.
var esTextFields = []string{"title^3", "type", "city^2", "state", "listedBy", "tags", "amenities"}

// esIndexMapping keeps keyword-like fields exact and text fields analysed.
const esIndexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "listingId":   {"type": "keyword"},
      "title":       {"type": "text"},
      "type":        {"type": "text"},
      "city":        {"type": "text"},
      "state":       {"type": "text"},
      "listedBy":    {"type": "text"},
      "tags":        {"type": "text"},
      "amenities":   {"type": "text"},
      "createdAt":   {"type": "date"}
    }
  }
}`

// ESPropertySearch implements TextSearcher and PropertyIndexer on Elasticsearch.
type ESPropertySearch struct {
	client *elasticsearch.Client
	index  string
}

// NewESPropertySearch creates a new Elasticsearch-based property search.
func NewESPropertySearch(client *elasticsearch.Client, index string) *ESPropertySearch {
	return &ESPropertySearch{client: client, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (s *ESPropertySearch) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = s.client.Indices.Create(s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(esIndexMapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// TextSearch runs a multi_match query, best matches first.
func (s *ESPropertySearch) TextSearch(ctx context.Context, query string, page domain.PageRequest) ([]domain.Property, int64, error) {
	body := map[string]interface{}{
		"from":             page.Offset(),
		"size":             page.Limit,
		"track_total_hits": true,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    esTextFields,
				"fuzziness": "AUTO",
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"createdAt": map[string]string{"order": "desc"}},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search properties: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var result esResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("failed to decode response: %w", err)
	}

	properties := make([]domain.Property, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var p domain.Property
		if err := json.Unmarshal(hit.Source, &p); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("skipping undecodable search hit")
			continue
		}
		properties = append(properties, p)
	}

	return properties, result.Hits.Total.Value, nil
}

// IndexProperty writes p as a document keyed by its ID. It returns once the
// document is visible to searches.
func (s *ESPropertySearch) IndexProperty(ctx context.Context, p *domain.Property) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal property: %w", err)
	}

	res, err := s.client.Index(s.index, bytes.NewReader(data),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(p.ID),
		s.client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("failed to index property: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// DeleteProperty removes a document. A missing document is not an error.
func (s *ESPropertySearch) DeleteProperty(ctx context.Context, id string) error {
	res, err := s.client.Delete(s.index, id,
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("failed to delete property document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// Reindex bulk-loads every property from repo.
func (s *ESPropertySearch) Reindex(ctx context.Context, repo PropertyRepository, batchSize int) (int, error) {
	indexed := 0
	err := repo.Each(ctx, batchSize, func(batch []domain.Property) error {
		if len(batch) == 0 {
			return nil
		}

		var buf bytes.Buffer
		for i := range batch {
			meta := map[string]interface{}{"index": map[string]string{"_index": s.index, "_id": batch[i].ID}}
			if err := writeNDJSON(&buf, meta, &batch[i]); err != nil {
				return err
			}
		}

		req := esapi.BulkRequest{Body: &buf}
		res, err := req.Do(ctx, s.client)
		if err != nil {
			return fmt.Errorf("failed to bulk index: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("elasticsearch error: %s", res.String())
		}

		var result esBulkResponse
		if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
			return fmt.Errorf("failed to decode bulk response: %w", err)
		}
		if result.Errors {
			return errors.New("bulk index reported item errors")
		}
		indexed += len(batch)
		return nil
	})
	return indexed, err
}

func writeNDJSON(buf *bytes.Buffer, lines ...interface{}) error {
	enc := json.NewEncoder(buf)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode bulk line: %w", err)
		}
	}
	return nil
}

// esResponse is the generic Elasticsearch search response structure.
type esResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
}
