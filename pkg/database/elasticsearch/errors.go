package elasticsearch

import "github.com/pkg/errors"

var (
	ErrNoAddresses       = errors.New("elasticsearch: no addresses configured")
	ErrMarshalFailed     = errors.New("elasticsearch: failed to marshal document")
	ErrBulkRequestFailed = errors.New("elasticsearch: bulk request failed")
	ErrBulkItemsFailed   = errors.New("elasticsearch: bulk items failed")
)
