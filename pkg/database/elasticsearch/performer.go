package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"

	"github.com/huynhanx03/go-commons/pkg/concurrent/collector"
	"github.com/huynhanx03/go-commons/pkg/pool/buffer"
)

const maxReportedItemErrors = 5

// BulkPerformer indexes each batch into one index with a single bulk request.
type BulkPerformer[T any] struct {
	bulk    esapi.Bulk
	index   string
	id      func(T) string
	refresh string
}

var _ collector.Performer[struct{}] = (*BulkPerformer[struct{}])(nil)

// BulkOption configures a BulkPerformer.
type BulkOption[T any] func(*BulkPerformer[T])

// WithDocumentID sets the function deriving each document's _id. Without it
// Elasticsearch generates ids.
func WithDocumentID[T any](fn func(T) string) BulkOption[T] {
	return func(p *BulkPerformer[T]) {
		p.id = fn
	}
}

// WithRefresh sets the refresh parameter of every bulk request
// ("true", "false" or "wait_for").
func WithRefresh[T any](refresh string) BulkOption[T] {
	return func(p *BulkPerformer[T]) {
		p.refresh = refresh
	}
}

// NewBulkPerformer creates a BulkPerformer. Pass client.Bulk of an
// *elasticsearch.Client.
func NewBulkPerformer[T any](bulk esapi.Bulk, index string, opts ...BulkOption[T]) *BulkPerformer[T] {
	p := &BulkPerformer[T]{
		bulk:  bulk,
		index: index,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Perform sends batch as one bulk index request. Per-item failures reported
// by Elasticsearch are returned as ErrBulkItemsFailed.
func (p *BulkPerformer[T]) Perform(ctx context.Context, batch []T) error {
	body := buffer.Get()
	defer buffer.Put(body)

	if err := p.encode(body, batch); err != nil {
		return err
	}

	opts := []func(*esapi.BulkRequest){
		p.bulk.WithContext(ctx),
		p.bulk.WithIndex(p.index),
	}
	if p.refresh != "" {
		opts = append(opts, p.bulk.WithRefresh(p.refresh))
	}

	res, err := p.bulk(bytes.NewReader(body.Bytes()), opts...)
	if err != nil {
		return errors.Wrapf(ErrBulkRequestFailed, "%v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Wrapf(ErrBulkRequestFailed, "%s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return errors.Wrapf(ErrBulkRequestFailed, "decode response: %v", err)
	}

	return parsed.err(len(batch))
}

// String identifies the performer in collector logs.
func (p *BulkPerformer[T]) String() string {
	return "elasticsearch:" + p.index
}

// encode builds the NDJSON body: an action line and a source line per item.
func (p *BulkPerformer[T]) encode(buf *bytes.Buffer, batch []T) error {
	for i, item := range batch {
		action := bulkAction{Index: bulkMeta{}}
		if p.id != nil {
			action.Index.ID = p.id(item)
		}

		meta, err := json.Marshal(action)
		if err != nil {
			return errors.Wrapf(ErrMarshalFailed, "item %d: %v", i, err)
		}
		data, err := json.Marshal(item)
		if err != nil {
			return errors.Wrapf(ErrMarshalFailed, "item %d: %v", i, err)
		}

		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return nil
}

type bulkAction struct {
	Index bulkMeta `json:"index"`
}

type bulkMeta struct {
	ID string `json:"_id,omitempty"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

func (r bulkResponse) err(total int) error {
	if !r.Errors {
		return nil
	}

	var reasons []string
	failed := 0
	for _, item := range r.Items {
		for _, result := range item {
			if result.Error == nil {
				continue
			}
			failed++
			if len(reasons) < maxReportedItemErrors {
				reasons = append(reasons, fmt.Sprintf("%s: %s (%s)", result.ID, result.Error.Type, result.Error.Reason))
			}
		}
	}

	return errors.Wrapf(ErrBulkItemsFailed, "%d of %d: %s", failed, total, strings.Join(reasons, "; "))
}
