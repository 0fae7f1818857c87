//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/mera-explorer/internal/adapter/kafka"
	"github.com/couchcryptid/mera-explorer/internal/config"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/observability"
	"github.com/couchcryptid/mera-explorer/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

// resolvedMessage holds a deserialized message read from the sink topic.
type resolvedMessage struct {
	Location mera.ResolvedLocation
	Key      string
	Headers  map[string]string
}

// readResolved reads a single message from the sink consumer and deserializes it.
func readResolved(ctx context.Context, t *testing.T, consumer *kafkago.Reader) resolvedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var loc mera.ResolvedLocation
	require.NoError(t, json.Unmarshal(msg.Value, &loc), "unmarshal sink message")

	return resolvedMessage{
		Location: loc,
		Key:      string(msg.Key),
		Headers:  headers,
	}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func newTransformer() *pipeline.LocationTransformer {
	return pipeline.NewTransformer(mera.NewResolver(mera.DefaultTable()), nil, "", discardLogger(), nil)
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor) and
// kafka.Writer (Loader) correctly round-trip a request through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-reader")

	payload, err := json.Marshal(mera.ResolveRequest{Variable: "precipitation_amount"})
	require.NoError(t, err)

	// No valid_time in the payload: the message timestamp is used.
	validTime := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: payload,
		Time:  validTime,
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []mera.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	require.NoError(t, raw.Commit(ctx))

	event, err := newTransformer().Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []mera.OutputEvent{event}))

	rm := readResolved(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "MERA_PRODYEAR_2016_12_61_105_0_4_FC3hr", rm.Key)
	assert.Equal(t, "FC3hr", rm.Headers["stream"])
	_, err = time.Parse(time.RFC3339, rm.Headers["resolved_at"])
	assert.NoError(t, err, "resolved_at should be valid RFC3339")

	assert.Equal(t, 247, rm.Location.Index)
	assert.Equal(t, 3, rm.Location.LeadTimeHours)
	assert.True(t, validTime.Equal(rm.Location.ValidTime))
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Transformer → Writer)
// with real Kafka and checks every fixture request resolves or is skipped.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-pipeline")

	reqs := loadRequests(t)
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(reqs))
	for i, req := range reqs {
		payload, err := json.Marshal(req)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("request-%d", i)),
			Value: payload,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(), writer, discardLogger(), metrics, 50, pipeline.WithWorkers(4))

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// the fixture holds three requests that cannot resolve
	const valid = 7
	consumer := sinkConsumer(t, broker)
	received := make(map[string]resolvedMessage, valid)
	for len(received) < valid {
		rm := readResolved(ctx, t, consumer)
		received[rm.Location.Variable] = rm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	for _, rm := range received {
		assert.Equal(t, rm.Location.File, rm.Key)
		assert.Equal(t, string(rm.Location.Stream), rm.Headers["stream"])
		assert.Contains(t, rm.Location.Path, rm.Location.File)
	}

	precip := received["precipitation_amount"]
	assert.Equal(t, "MERA_PRODYEAR_2016_12_61_105_0_4_FC3hr", precip.Location.File)
	assert.Equal(t, 247, precip.Location.Index)

	msl := received["air_pressure_at_sea_level"]
	assert.Equal(t, mera.Code{Parameter: 1, LevelType: 103, Level: 0, TimeRange: 0}, msl.Location.Code)

	assert.True(t, p.Ready())
}

// TestPipelineTransformError verifies that an invalid message (poison pill) is
// skipped and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-poison")

	validPayload, err := json.Marshal(mera.ResolveRequest{
		Variable:  "air_temperature_at_2_metres",
		ValidTime: time.Date(2017, time.January, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("unknown"), Value: []byte(`{"variable":"sea_ice_thickness","valid_time":"2017-01-01T00:00:00Z"}`)},
		kafkago.Message{Key: []byte("good"), Value: validPayload},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Only the valid message should appear on the sink topic.
	consumer := sinkConsumer(t, broker)

	rm := readResolved(ctx, t, consumer)
	assert.Equal(t, "MERA_PRODYEAR_2017_01_11_105_2_0_ANALYSIS", rm.Key)
	assert.Equal(t, 72, rm.Location.Index)

	// Verify no second message arrives (the poison pills were skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}

// TestReaderIdleTopicReturnsEmptyBatch checks that the flush interval also
// bounds the wait for the first message.
func TestReaderIdleTopicReturnsEmptyBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)

	cfg := testConfig(broker, "test-idle")
	cfg.BatchFlushInterval = time.Second

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	start := time.Now()
	batch, err := reader.ExtractBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.Less(t, time.Since(start), 30*time.Second)
}
