package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/chrisdamba/pupulse/internal/cloudwriter"
	"github.com/chrisdamba/pupulse/internal/events"
	"github.com/chrisdamba/pupulse/internal/models"
)

var at = time.Date(2025, 9, 1, 13, 45, 0, 0, time.UTC)

func placedEvent(orderID string) events.Event {
	ev := events.New(events.OrderPlaced, at)
	ev.OrderID = orderID
	ev.Status = "placed"
	ev.Total = 180
	ev.ItemCount = 3
	ev.Address = "H4, Room 12"
	return ev
}

func mustMarshal(t *testing.T, ev events.Event) []byte {
	t.Helper()
	b, err := ev.Marshal()
	require.NoError(t, err)
	return b
}

func TestPartitionPath(t *testing.T) {
	assert.Equal(t, "year=2025/month=09/day=01/hour=13", partitionPath(at.Unix()))
}

func TestMessageKey(t *testing.T) {
	assert.Equal(t, "ORD-1234", messageKey(mustMarshal(t, placedEvent("ORD-1234"))))

	ev := events.New(events.PartnerStatusChanged, at)
	ev.PartnerID = "dp1"
	assert.Equal(t, "dp1", messageKey(mustMarshal(t, ev)))
	assert.Equal(t, "", messageKey([]byte("not json")))
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput(&buf)

	require.NoError(t, out.WriteMessage("order_placed_events", []byte(`{"a":1}`)))
	require.NoError(t, out.Close())

	assert.Equal(t, "[order_placed_events] {\"a\":1}\n", buf.String())
}

func TestJSONOutputPartitionsByTopicAndHour(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir, "events")

	require.NoError(t, out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-1001"))))
	require.NoError(t, out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-1002"))))
	require.NoError(t, out.Close())

	f, err := os.Open(filepath.Join(dir, "events", "order_placed_events", "year=2025", "month=09", "day=01", "hour=13", "data.json"))
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev events.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		ids = append(ids, ev.OrderID)
	}
	assert.Equal(t, []string{"ORD-1001", "ORD-1002"}, ids)
}

func TestJSONOutputRejectsEventsWithoutTimestamp(t *testing.T) {
	out := NewJSONOutput(t.TempDir(), "events")
	assert.Error(t, out.WriteMessage("x", []byte(`{"eventType":"order_placed"}`)))
}

func TestKafkaOutput(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev events.Event
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.OrderID != "ORD-2002" {
			return errors.New("unexpected order id " + ev.OrderID)
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	out := NewKafkaOutputWithProducer(producer, "pupulse")
	assert.Equal(t, "pupulse.order_placed_events", out.topic("order_placed_events"))

	require.NoError(t, out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-2002"))))
	err := out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-2003")))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)

	require.NoError(t, out.Close())
	assert.Error(t, out.WriteMessage("order_placed_events", nil))
}

func readParquet(t *testing.T, path string) []events.Event {
	t.Helper()
	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(events.Event), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	rows := make([]events.Event, int(pr.GetNumRows()))
	require.NoError(t, pr.Read(&rows))
	return rows
}

func TestLocalParquetOutput(t *testing.T) {
	dir := t.TempDir()
	out := NewLocalParquetOutput(dir, "events")

	require.NoError(t, out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-3001"))))
	require.NoError(t, out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-3002"))))
	require.NoError(t, out.Close())

	rows := readParquet(t, filepath.Join(dir, "events", "order_placed_events", partitionPath(at.Unix()), "data.parquet"))
	require.Len(t, rows, 2)
	assert.Equal(t, "ORD-3001", rows[0].OrderID)
	assert.Equal(t, int64(180), rows[1].Total)
	assert.Equal(t, "H4, Room 12", rows[1].Address)
}

type memoryWriter struct {
	buf    bytes.Buffer
	closed bool
}

func (m *memoryWriter) Write(b []byte) (int, error) { return m.buf.Write(b) }
func (m *memoryWriter) Close() error                { m.closed = true; return nil }

type memoryFactory struct {
	objects map[string]*memoryWriter
}

func (f *memoryFactory) NewWriter(bucket, objectPath string) (cloudwriter.CloudWriter, error) {
	w := &memoryWriter{}
	f.objects[bucket+"/"+objectPath] = w
	return w, nil
}

func TestCloudParquetOutput(t *testing.T) {
	factory := &memoryFactory{objects: make(map[string]*memoryWriter)}
	out := NewCloudParquetOutput("events", factory, "pulse-archive")

	require.NoError(t, out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-4001"))))
	require.NoError(t, out.Close())

	obj, ok := factory.objects["pulse-archive/events/order_placed_events/year=2025/month=09/day=01/hour=13/data.parquet"]
	require.True(t, ok)
	assert.True(t, obj.closed)
	data := obj.buf.Bytes()
	require.Greater(t, len(data), 8)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))
}

type fakeExecer struct {
	sql  string
	args []any
	err  error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestPostgresOutputInsertsEventRow(t *testing.T) {
	db := &fakeExecer{}
	out := &PostgresOutput{db: db, timeout: time.Second}

	require.NoError(t, out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-5001"))))

	assert.Contains(t, db.sql, "INSERT INTO session_events")
	require.Len(t, db.args, 13)
	assert.Equal(t, "order_placed_events", db.args[0])
	assert.Equal(t, "order_placed", db.args[1])
	assert.True(t, at.Equal(db.args[2].(time.Time)))
	assert.Equal(t, "ORD-5001", *db.args[3].(*string))
	assert.Nil(t, db.args[4].(*string))
	assert.Equal(t, int64(180), db.args[8])

	db.err = &pgconn.PgError{Code: "40001"}
	err := out.WriteMessage("order_placed_events", mustMarshal(t, placedEvent("ORD-5002")))
	assert.ErrorContains(t, err, "transient failure")
}

type failingOutput struct{ closed bool }

func (f *failingOutput) WriteMessage(string, []byte) error { return errors.New("disk full") }
func (f *failingOutput) Close() error                      { f.closed = true; return nil }

type errorLog struct{ msgs []string }

func (l *errorLog) Error(msg string, _ ...any) { l.msgs = append(l.msgs, msg) }

func TestEventWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewEventWriter(NewConsoleOutput(&buf), nil)
	w.Publish(placedEvent("ORD-6001"))
	w.Publish(events.New(events.MenuItemDeleted, at))

	assert.Equal(t, map[string]int{"order_placed_events": 1, "menu_item_deleted_events": 1}, w.Written())
	assert.Equal(t, 0, w.Failures())

	log := &errorLog{}
	failing := &failingOutput{}
	fw := NewEventWriter(failing, log)
	fw.Publish(placedEvent("ORD-6002"))
	assert.Equal(t, 1, fw.Failures())
	assert.Len(t, log.msgs, 1)
	require.NoError(t, fw.Close())
	assert.True(t, failing.closed)
}

func TestNewRejectsUnknownDestination(t *testing.T) {
	_, err := New(&models.Config{OutputDestination: "fax"})
	assert.Error(t, err)

	dest, err := New(&models.Config{OutputDestination: "json", OutputPath: t.TempDir(), OutputFolder: "events"})
	require.NoError(t, err)
	assert.IsType(t, &JSONOutput{}, dest)
}
