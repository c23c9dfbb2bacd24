package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recordingObserver struct {
	name   string
	events chan ReceiptEvent
}

func (o *recordingObserver) OnEvent(ctx context.Context, event ReceiptEvent) {
	o.events <- event
}

func (o *recordingObserver) GetObserverName() string {
	return o.name
}

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event ReceiptEvent) {
	panic("boom")
}

func (panickingObserver) GetObserverName() string {
	return "panicking_observer"
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, ReceiptEvent{EventType: QualityChecked, Success: true, ProcessingTime: 10 * time.Millisecond,
		Metadata: map[string]interface{}{"is_good_quality": true}})
	m.OnEvent(ctx, ReceiptEvent{EventType: QualityChecked, Success: true, ProcessingTime: 30 * time.Millisecond,
		Metadata: map[string]interface{}{"is_good_quality": false}})
	m.OnEvent(ctx, ReceiptEvent{EventType: StoreMatched, Success: true,
		Metadata: map[string]interface{}{"match_type": "fuzzy"}})
	m.OnEvent(ctx, ReceiptEvent{EventType: RecognitionFailed, Success: false})

	metrics := m.GetMetrics()

	events := metrics["events"].(map[string]int64)
	if events["quality_checked"] != 2 || events["store_matched"] != 1 || events["recognition_failed"] != 1 {
		t.Errorf("Unexpected event counts: %v", events)
	}
	failures := metrics["failures"].(map[string]int64)
	if len(failures) != 1 || failures["recognition_failed"] != 1 {
		t.Errorf("Unexpected failure counts: %v", failures)
	}
	if metrics["good_quality_captures"].(int64) != 1 {
		t.Errorf("Expected 1 good capture, got %v", metrics["good_quality_captures"])
	}
	if metrics["match_types"].(map[string]int64)["fuzzy"] != 1 {
		t.Errorf("Expected 1 fuzzy match, got %v", metrics["match_types"])
	}
	if metrics["avg_processing_time_ms"].(int64) != 20 {
		t.Errorf("Expected 20ms average over timed events, got %v", metrics["avg_processing_time_ms"])
	}
}

func TestMetricsObserver_SnapshotIsCopy(t *testing.T) {
	m := NewMetricsObserver()
	m.OnEvent(context.Background(), ReceiptEvent{EventType: StoreMatched, Success: true})

	snapshot := m.GetMetrics()["events"].(map[string]int64)
	snapshot["store_matched"] = 99

	if got := m.GetMetrics()["events"].(map[string]int64)["store_matched"]; got != 1 {
		t.Errorf("Expected observer state to be unaffected, got %d", got)
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	o := NewLoggingObserver(logger)
	o.OnEvent(context.Background(), ReceiptEvent{
		EventType:    RecognitionFailed,
		Source:       "inline",
		ErrorMessage: "capture failed quality gate",
		Metadata:     map[string]interface{}{"overall_score": 40},
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warning" {
		t.Errorf("Expected warning level, got %v", entry["level"])
	}
	if entry["error"] != "capture failed quality gate" || entry["source"] != "inline" {
		t.Errorf("Expected event fields in log entry, got %v", entry)
	}
	if entry["overall_score"] != float64(40) {
		t.Errorf("Expected metadata to be flattened into fields, got %v", entry)
	}
}

func TestEventPublisher(t *testing.T) {
	p := NewEventPublisher()
	first := &recordingObserver{name: "first", events: make(chan ReceiptEvent, 2)}
	second := &recordingObserver{name: "second", events: make(chan ReceiptEvent, 2)}
	p.Subscribe(first)
	p.Subscribe(second)
	p.Subscribe(panickingObserver{})

	ctx, cancel := context.WithCancel(context.Background())
	p.NotifyObservers(ctx, ReceiptEvent{EventType: StoreMatched})
	cancel()

	for _, o := range []*recordingObserver{first, second} {
		select {
		case event := <-o.events:
			if event.EventType != StoreMatched {
				t.Errorf("Expected %s, got %s", StoreMatched, event.EventType)
			}
		case <-time.After(time.Second):
			t.Fatalf("Observer %s was not notified", o.name)
		}
	}

	p.Unsubscribe(second)
	p.NotifyObservers(context.Background(), ReceiptEvent{EventType: QualityChecked})

	select {
	case event := <-first.events:
		if event.EventType != QualityChecked {
			t.Errorf("Expected %s, got %s", QualityChecked, event.EventType)
		}
	case <-time.After(time.Second):
		t.Fatal("Remaining observer was not notified")
	}
	select {
	case event := <-second.events:
		t.Errorf("Expected unsubscribed observer to receive nothing, got %s", event.EventType)
	case <-time.After(50 * time.Millisecond):
	}
}
