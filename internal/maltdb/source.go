package maltdb

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/mwhite7112/woodpantry-brewlist/internal/blob"
)

//go:embed malts.yaml
var embeddedTable []byte

// Source loads the reference table. Implementations may fail; callers treat
// a failure as "no table" and fall back to simpler matching.
type Source interface {
	Load(ctx context.Context) (*Table, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Table, error)

func (f SourceFunc) Load(ctx context.Context) (*Table, error) { return f(ctx) }

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Parse(embeddedTable)
	})
	return defaultTable, defaultErr
}

// Embedded is the Source for the compiled-in table.
type Embedded struct{}

func (Embedded) Load(context.Context) (*Table, error) { return Default() }

// BlobSource reads the table from a blob store key.
type BlobSource struct {
	Store blob.Store
	Key   string
}

func (s BlobSource) Load(ctx context.Context) (*Table, error) {
	data, err := blob.ReadAll(ctx, s.Store, s.Key)
	if err != nil {
		return nil, fmt.Errorf("read malt table %s: %w", s.Key, err)
	}
	return Parse(data)
}

// Chain tries each source in order and returns the first table that loads.
type Chain []Source

func (c Chain) Load(ctx context.Context) (*Table, error) {
	if len(c) == 0 {
		return nil, errors.New("no malt table source configured")
	}
	var errs []error
	for _, s := range c {
		t, err := s.Load(ctx)
		if err == nil {
			return t, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
