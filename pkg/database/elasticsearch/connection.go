package elasticsearch

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/pkg/errors"

	"github.com/huynhanx03/go-commons/pkg/settings"
)

// NewClient creates an Elasticsearch client for the configured nodes.
func NewClient(cfg *settings.Elasticsearch) (*elasticsearch.Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, ErrNoAddresses
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "elasticsearch: failed to create client")
	}

	return client, nil
}
