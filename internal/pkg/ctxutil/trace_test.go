package ctxutil

import (
	"context"
	"testing"
)

func TestWithTraceDataAcceptsNilContext(t *testing.T) {
	ctx := WithTraceData(nil, &TraceData{TraceID: "t1", RequestID: "r1"})
	td := GetTraceData(ctx)
	if td == nil || td.TraceID != "t1" {
		t.Fatalf("unexpected trace data %+v", td)
	}
	fields := LogFields(ctx)
	if len(fields) != 4 || fields[1] != "t1" || fields[3] != "r1" {
		t.Fatalf("unexpected log fields %v", fields)
	}
	if LogFields(context.Background()) != nil {
		t.Fatalf("expected no fields without trace data")
	}
}
