package amqp

import (
	"testing"
	"time"
)

func TestInsightRefreshMessageRoundTrip(t *testing.T) {
	msg := NewInsightRefreshMessage("biz-42")
	if msg.BusinessID != "biz-42" {
		t.Errorf("BusinessID = %s, want biz-42", msg.BusinessID)
	}
	if msg.RequestedAt.IsZero() {
		t.Error("RequestedAt should be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := InsightRefreshMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if decoded.BusinessID != msg.BusinessID {
		t.Errorf("BusinessID = %s, want %s", decoded.BusinessID, msg.BusinessID)
	}
	if !decoded.RequestedAt.Truncate(time.Millisecond).Equal(msg.RequestedAt.Truncate(time.Millisecond)) {
		t.Errorf("RequestedAt = %v, want %v", decoded.RequestedAt, msg.RequestedAt)
	}
}

func TestInsightRefreshMessageFromJSON_Invalid(t *testing.T) {
	if _, err := InsightRefreshMessageFromJSON([]byte("not json")); err == nil {
		t.Error("FromJSON() = nil error, want unmarshal error")
	}
}
