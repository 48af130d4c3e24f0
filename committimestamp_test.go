package changestreamcore

import (
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/go-cmp/cmp"
)

func TestResolveCommitTimestamp_SubstitutesSentinel(t *testing.T) {
	col := &Column{Name: "LastUpdated", Type: Type{Code: TypeCodeTimestamp}, AllowCommitTimestamp: true}
	resolved := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)

	got := ResolveCommitTimestamp(col, TimestampValue(spanner.CommitTimestamp), resolved)
	want := TimestampValue(resolved)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveCommitTimestamp() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCommitTimestamp_ColumnDoesNotAllowCommitTimestamp(t *testing.T) {
	col := &Column{Name: "LastUpdated", Type: Type{Code: TypeCodeTimestamp}, AllowCommitTimestamp: false}
	v := TimestampValue(spanner.CommitTimestamp)

	got := ResolveCommitTimestamp(col, v, time.Now())
	if diff := cmp.Diff(v, got); diff != "" {
		t.Errorf("ResolveCommitTimestamp() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCommitTimestamp_ValueIsNotTheSentinel(t *testing.T) {
	col := &Column{Name: "LastUpdated", Type: Type{Code: TypeCodeTimestamp}, AllowCommitTimestamp: true}
	explicit := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	v := TimestampValue(explicit)

	got := ResolveCommitTimestamp(col, v, time.Now())
	if diff := cmp.Diff(v, got); diff != "" {
		t.Errorf("ResolveCommitTimestamp() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCommitTimestamp_WrongTypeCodeIsUnchanged(t *testing.T) {
	col := &Column{Name: "Name", Type: Type{Code: TypeCodeString}, AllowCommitTimestamp: true}
	v := StringValue("hello")

	got := ResolveCommitTimestamp(col, v, time.Now())
	if diff := cmp.Diff(v, got); diff != "" {
		t.Errorf("ResolveCommitTimestamp() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCommitTimestamp_NullIsUnchanged(t *testing.T) {
	col := &Column{Name: "LastUpdated", Type: Type{Code: TypeCodeTimestamp}, AllowCommitTimestamp: true}
	v := Null(Type{Code: TypeCodeTimestamp})

	got := ResolveCommitTimestamp(col, v, time.Now())
	if diff := cmp.Diff(v, got); diff != "" {
		t.Errorf("ResolveCommitTimestamp() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCommitTimestamps_BatchAppliesPerColumn(t *testing.T) {
	plain := &Column{Name: "FirstName", Type: Type{Code: TypeCodeString}}
	stamped := &Column{Name: "LastUpdated", Type: Type{Code: TypeCodeTimestamp}, AllowCommitTimestamp: true}
	resolved := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)

	got := resolveCommitTimestamps(
		[]*Column{plain, stamped},
		[]Value{StringValue("Alice"), TimestampValue(spanner.CommitTimestamp)},
		resolved,
	)

	want := []Value{StringValue("Alice"), TimestampValue(resolved)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolveCommitTimestamps() mismatch (-want +got):\n%s", diff)
	}
}
