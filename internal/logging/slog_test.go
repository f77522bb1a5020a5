package logging

import (
	"log/slog"
	"testing"
)

func TestErr_Nil(t *testing.T) {
	attr := Err(nil)
	if attr.Value.Kind() != slog.KindGroup {
		t.Errorf("Err(nil) should return a group attribute, got %v", attr.Value.Kind())
	}
	if len(attr.Value.Group()) != 0 {
		t.Error("Err(nil) should return an empty group")
	}
}

func TestErr_NonNil(t *testing.T) {
	attr := Err(errTest("boom"))
	if attr.Key != KeyError {
		t.Errorf("Err() key = %v, want %v", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err() value = %v, want boom", attr.Value.String())
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestWithOperation(t *testing.T) {
	logger := WithOperation(slog.Default(), "kb.process")
	if logger == nil {
		t.Fatal("WithOperation returned nil")
	}
	// Should not panic
	logger.Debug("test message", Status(StatusSuccess))
}

func TestAttributeKeys(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
	}{
		{"operation", Operation("gmail.download"), KeyOperation},
		{"account", Account("default"), KeyAccount},
		{"batch", Batch("1985-07-08 AFTONBLADET (4 sid).pdf"), KeyBatch},
		{"file", File("bib4345612_19850708_01_02_0001.jpg"), KeyFile},
		{"publication", Publication("AFTONBLADET"), KeyPublication},
		{"status", Status(StatusSkipped), KeyStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("attribute key = %v, want %v", tt.attr.Key, tt.key)
			}
		})
	}
}
