// Package output writes session lifecycle events to a configured destination.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chrisdamba/pupulse/internal/events"
	"github.com/chrisdamba/pupulse/internal/models"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// New picks the destination named by cfg.OutputDestination.
func New(cfg *models.Config) (OutputDestination, error) {
	switch cfg.OutputDestination {
	case "", "console":
		return NewConsoleOutput(os.Stdout), nil
	case "json":
		return NewJSONOutput(cfg.OutputPath, cfg.OutputFolder), nil
	case "kafka":
		return NewKafkaOutput(cfg)
	case "parquet":
		return NewParquetOutput(cfg)
	case "postgres":
		return NewPostgresOutput(cfg.Database.URL)
	case "redis":
		return NewRedisOutput(cfg.Redis)
	case "rabbitmq":
		return NewRabbitMQOutput(cfg.RabbitMQ)
	default:
		return nil, fmt.Errorf("unsupported output destination: %s", cfg.OutputDestination)
	}
}

// partitionPath lays files out by event hour, e.g. year=2025/month=09/day=01/hour=13.
func partitionPath(ts int64) string {
	t := time.Unix(ts, 0).UTC()
	year, month, day := t.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, t.Hour())
}

type eventHead struct {
	Timestamp  *int64 `json:"timestamp"`
	OrderID    string `json:"orderId"`
	PartnerID  string `json:"partnerId"`
	MenuItemID string `json:"menuItemId"`
}

func eventTimestamp(msg []byte) (int64, error) {
	var head eventHead
	if err := json.Unmarshal(msg, &head); err != nil {
		return 0, err
	}
	if head.Timestamp == nil {
		return 0, fmt.Errorf("invalid timestamp")
	}
	return *head.Timestamp, nil
}

// messageKey is the entity an event belongs to: its order, else its partner,
// else its menu item.
func messageKey(msg []byte) string {
	var head eventHead
	if err := json.Unmarshal(msg, &head); err != nil {
		return ""
	}
	switch {
	case head.OrderID != "":
		return head.OrderID
	case head.PartnerID != "":
		return head.PartnerID
	default:
		return head.MenuItemID
	}
}

type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error {
	if f, ok := c.w.(*os.File); ok {
		_ = f.Sync()
	}
	return nil
}

// JSONOutput appends newline-delimited events to one file per topic and hour.
type JSONOutput struct {
	basePath string
	folder   string
	mu       sync.Mutex
	files    map[string]*os.File
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	ts, err := eventTimestamp(msg)
	if err != nil {
		return err
	}

	partition := partitionPath(ts)
	fullPath := filepath.Join(j.basePath, j.folder, topic, partition)

	j.mu.Lock()
	defer j.mu.Unlock()

	fileKey := fmt.Sprintf("%s_%s", topic, partition)
	file, ok := j.files[fileKey]
	if !ok {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		file, err = os.Create(filepath.Join(fullPath, "data.json"))
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err = file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var lastErr error
	for key, file := range j.files {
		if err := file.Close(); err != nil {
			lastErr = err
		}
		delete(j.files, key)
	}
	return lastErr
}

// EventWriter publishes events to a destination. Write failures are logged
// and counted; they never reach the session.
type EventWriter struct {
	dest   OutputDestination
	logger Logger

	mu       sync.Mutex
	written  map[string]int
	failures int
}

// Logger is the subset of *slog.Logger the writer needs.
type Logger interface {
	Error(msg string, args ...any)
}

func NewEventWriter(dest OutputDestination, logger Logger) *EventWriter {
	return &EventWriter{
		dest:    dest,
		logger:  logger,
		written: make(map[string]int),
	}
}

func (w *EventWriter) Publish(e events.Event) {
	topic := e.Topic()
	msg, err := e.Marshal()
	if err == nil {
		err = w.dest.WriteMessage(topic, msg)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.failures++
		if w.logger != nil {
			w.logger.Error("failed to write event", "topic", topic, "orderId", e.OrderID, "error", err)
		}
		return
	}
	w.written[topic]++
}

// Written returns the number of events written per topic.
func (w *EventWriter) Written() map[string]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.written))
	for k, v := range w.written {
		out[k] = v
	}
	return out
}

func (w *EventWriter) Failures() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures
}

func (w *EventWriter) Close() error {
	return w.dest.Close()
}
