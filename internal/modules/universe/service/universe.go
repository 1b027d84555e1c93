package service

import (
	"context"

	"scan_bot/pkg/logger"
)

// Store is a persistent universe source.
type Store interface {
	Symbols(ctx context.Context) ([]string, error)
}

// Universe yields the ticker codes scanned by top requests.
type Universe struct {
	store    Store
	fallback bool
}

// New uses the bundled list when store is nil. With fallback set, store
// errors and an empty table also fall back to the bundled list.
func New(store Store, fallback bool) *Universe {
	return &Universe{store: store, fallback: fallback}
}

func (u *Universe) Tickers(ctx context.Context) ([]string, error) {
	if u.store == nil {
		return BuiltIn(), nil
	}

	codes, err := u.store.Symbols(ctx)
	if err != nil {
		if !u.fallback {
			return nil, err
		}
		logger.Warn("universe store failed, using built-in list: %v", err)
		return BuiltIn(), nil
	}
	if len(codes) == 0 && u.fallback {
		logger.Warn("universe store is empty, using built-in list")
		return BuiltIn(), nil
	}

	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = Code(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}
