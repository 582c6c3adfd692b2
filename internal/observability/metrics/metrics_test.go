package metrics

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("method", "TRANSFER"),
		attribute.String("tenant_id", "456"),
		attribute.String("channel", "IN_APP"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "method" && attrs[1].Key != "method" {
		t.Fatalf("expected method to be retained")
	}
	if attrs[0].Key != "channel" && attrs[1].Key != "channel" {
		t.Fatalf("expected channel to be retained")
	}
}
