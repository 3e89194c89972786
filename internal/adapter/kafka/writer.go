// Package kafka is the record sink adapter: point records and tiles go to
// their own topics.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/nwp-ingest/internal/config"
	"github.com/couchcryptid/nwp-ingest/internal/domain"
)

// Writer produces extracted rows to Kafka. It implements
// pipeline.RecordSink.
type Writer struct {
	points *kafkago.Writer
	tiles  *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates producers for the points and tiles topics.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	return &Writer{
		points: newTopicWriter(cfg.KafkaBrokers, cfg.KafkaPointsTopic),
		tiles:  newTopicWriter(cfg.KafkaBrokers, cfg.KafkaTilesTopic),
		logger: logger,
	}
}

func newTopicWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
}

// WritePoints publishes one batch of point records in a single
// WriteMessages call.
func (w *Writer) WritePoints(ctx context.Context, records []domain.PointRecord) (domain.SinkResult, error) {
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := pointMessage(records[i])
		if err != nil {
			return domain.SinkResult{}, err
		}
		msgs[i] = msg
	}
	return w.write(ctx, w.points, msgs)
}

// WriteTiles publishes one batch of tiles in a single WriteMessages call.
func (w *Writer) WriteTiles(ctx context.Context, tiles []domain.Tile) (domain.SinkResult, error) {
	msgs := make([]kafkago.Message, len(tiles))
	for i := range tiles {
		msg, err := tileMessage(tiles[i])
		if err != nil {
			return domain.SinkResult{}, err
		}
		msgs[i] = msg
	}
	return w.write(ctx, w.tiles, msgs)
}

// write sends a batch and maps per-message write errors to row rejections.
// A kafkago.WriteErrors result means the batch as a whole went through with
// some rows refused, which is the sink contract's partial-acceptance case.
func (w *Writer) write(ctx context.Context, writer *kafkago.Writer, msgs []kafkago.Message) (domain.SinkResult, error) {
	if len(msgs) == 0 {
		return domain.SinkResult{}, nil
	}

	err := writer.WriteMessages(ctx, msgs...)
	if err == nil {
		return domain.SinkResult{Written: len(msgs)}, nil
	}

	var writeErrs kafkago.WriteErrors
	if errors.As(err, &writeErrs) {
		return mapWriteErrors(writeErrs), nil
	}

	return domain.SinkResult{}, fmt.Errorf("write kafka batch: %w", err)
}

func mapWriteErrors(errs kafkago.WriteErrors) domain.SinkResult {
	res := domain.SinkResult{}
	for i, werr := range errs {
		if werr == nil {
			res.Written++
			continue
		}
		res.Rejected = append(res.Rejected, domain.RejectedRow{Index: i, Reason: werr.Error()})
	}
	return res
}

func (w *Writer) Close() error {
	return errors.Join(w.points.Close(), w.tiles.Close())
}

// pointMessage marshals a point record into a Kafka message keyed for
// per-target ordering.
func pointMessage(r domain.PointRecord) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize point record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "model", Value: []byte(r.Model)},
			{Key: "run_time", Value: []byte(r.RunTime.UTC().Format(time.RFC3339))},
		},
	}, nil
}

// tileMessage marshals a tile into a Kafka message keyed for per-cell
// ordering.
func tileMessage(t domain.Tile) (kafkago.Message, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize tile: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(t.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "model", Value: []byte(t.Model)},
			{Key: "batch_id", Value: []byte(t.BatchID)},
		},
	}, nil
}
