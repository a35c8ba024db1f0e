package ingest

import (
	"context"

	"github.com/vientodata/enviro-etl-service/internal/storage"
)

// LocationResolver maps coordinates to stable location ids.
type LocationResolver interface {
	ResolveOrCreate(ctx context.Context, cand storage.LocationRow) (int64, error)
}

// CodeResolver maps a catalog code (parameter or model) to its database id.
type CodeResolver interface {
	Resolve(ctx context.Context, code string) (int64, error)
}
