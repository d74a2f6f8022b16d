package backend

import (
	"context"
	"fmt"
	"io"

	"github.com/nikbrunner/shelf/internal/config"
)

// Open creates the backend selected by cfg.Backend.Kind. The returned
// closer releases connections and is never nil.
func Open(ctx context.Context, cfg *config.Config, tokens TokenSource) (Backend, io.Closer, error) {
	switch cfg.Backend.Kind {
	case config.BackendSQLite:
		s, err := NewSQLite(cfg.Backend.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendJSON:
		j, err := NewJSONFile(cfg.Backend.Path)
		if err != nil {
			return nil, nil, err
		}
		return j, nopCloser{}, nil
	case config.BackendRedis:
		r, err := DialRedis(ctx, cfg.Backend.RedisAddr, cfg.Backend.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case config.BackendREST:
		return NewREST(cfg.Backend.RESTURL, cfg.Backend.Timeout, tokens), nopCloser{}, nil
	case config.BackendMemory:
		return NewMemory(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend kind %q", cfg.Backend.Kind)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
