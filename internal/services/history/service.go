package history

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/voxnote/voxnote/internal/dependencies/clock"
	"github.com/voxnote/voxnote/internal/model"
	"github.com/voxnote/voxnote/internal/storage"
)

// Each account's conversion history lives under its own key, so the
// whole history can be dropped with the account.
const keyPrefix = "conversions_"

// tempLatestKey caches the most recent record; it lives under the
// transient prefix and is swept on logout.
const tempLatestKey = "temp_lastConversion"

// Key returns the storage key for an account's conversion history.
func Key(emailKey string) string {
	return keyPrefix + emailKey
}

// Log records and reads per-account conversion history.
type Log struct {
	kv     storage.KV
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a conversion log over the given storage.
func New(kv storage.KV, clk clock.Clock, logger *slog.Logger) *Log {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Log{
		kv:     kv,
		clock:  clk,
		logger: logger,
	}
}

// Append records a conversion for the given account and returns the
// stored record.
func (l *Log) Append(ctx context.Context, emailKey string, kind model.ConversionKind, text, language string) (*model.ConversionRecord, error) {
	records, err := l.List(ctx, emailKey)
	if err != nil {
		return nil, err
	}

	record := model.ConversionRecord{
		Kind:      kind,
		Text:      text,
		Language:  language,
		CreatedAt: l.clock.Now(),
	}
	records = append(records, record)

	data, err := json.Marshal(records)
	if err != nil {
		return nil, &model.PersistenceError{Op: "encode conversion history", Err: err}
	}
	if err := l.kv.Set(ctx, Key(emailKey), data); err != nil {
		return nil, &model.PersistenceError{Op: "save conversion history", Err: err}
	}

	// Best-effort cache of the newest record for quick re-display.
	if cached, err := json.Marshal(record); err == nil {
		if err := l.kv.Set(ctx, tempLatestKey, cached); err != nil {
			l.logger.Warn("could not cache latest conversion",
				slog.String("error", err.Error()))
		}
	}

	return &record, nil
}

// List returns an account's conversion records in append order. A
// missing or corrupt history reads as empty.
func (l *Log) List(ctx context.Context, emailKey string) ([]model.ConversionRecord, error) {
	data, err := l.kv.Get(ctx, Key(emailKey))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []model.ConversionRecord{}, nil
		}
		return nil, err
	}

	var records []model.ConversionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		l.logger.Warn("conversion history is corrupt, treating as empty",
			slog.String("email", emailKey), slog.String("error", err.Error()))
		return []model.ConversionRecord{}, nil
	}
	return records, nil
}

// CountByKind tallies an account's records per conversion kind.
func (l *Log) CountByKind(ctx context.Context, emailKey string) (map[model.ConversionKind]int, error) {
	records, err := l.List(ctx, emailKey)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ConversionKind]int)
	for _, record := range records {
		counts[record.Kind]++
	}
	return counts, nil
}
