package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/food_api/internal/models"
)

// Index is the full-text view of the food table.
type Index interface {
	IndexFood(ctx context.Context, f *models.Food) error
	DeleteFood(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Food, error)
}

type ESIndex struct {
	ES    *elasticsearch.Client
	Index string
}

type Options struct {
	URL      string
	Username string
	Password string
}

// NewClient connects to Elasticsearch and checks the cluster answers.
func NewClient(ctx context.Context, opts Options, l *slog.Logger) (*elasticsearch.Client, error) {
	l.Info("es_connecting", "url", opts.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{opts.URL},
		Username:  opts.Username,
		Password:  opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es info: %s: %s", res.Status(), body)
	}

	l.Info("es_connected", "url", opts.URL)
	return client, nil
}

func (x *ESIndex) IndexFood(ctx context.Context, f *models.Food) error {
	body, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode food: %w", err)
	}

	res, err := x.ES.Index(x.Index, bytes.NewReader(body),
		x.ES.Index.WithContext(ctx),
		x.ES.Index.WithDocumentID(strconv.FormatUint(uint64(f.ID), 10)),
		x.ES.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index food %d: %w", f.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index food %d: %s", f.ID, res.Status())
	}
	return nil
}

func (x *ESIndex) DeleteFood(ctx context.Context, id uint) error {
	res, err := x.ES.Delete(x.Index, strconv.FormatUint(uint64(id), 10),
		x.ES.Delete.WithContext(ctx),
		x.ES.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("delete food %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("delete food %d: %s", id, res.Status())
	}
	return nil
}

var ErrSearchFailed = errors.New("search failed")

func (x *ESIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Food, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "location"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Food `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.Food, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}
