package results

import (
	"reflect"
	"testing"
)

func TestCompositeKeyOrderSensitive(t *testing.T) {
	forward := CompositeKey([]string{"a", "b", "c"})
	reverse := CompositeKey([]string{"c", "b", "a"})

	if forward != "a|b|c" {
		t.Fatalf("unexpected composite key: %q", forward)
	}
	if forward == reverse {
		t.Fatal("composite keys for different id orders must differ")
	}
}

func TestCompositeKeySingle(t *testing.T) {
	if got := CompositeKey([]string{"u1"}); got != "u1" {
		t.Fatalf("single-id composite key = %q, want %q", got, "u1")
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"u1", []string{"u1"}},
		{"u1|u2|u3", []string{"u1", "u2", "u3"}},
		{"u1||u2", []string{"u1", "u2"}},
		{" u1 | u2 ", []string{"u1", "u2"}},
	}

	for _, tt := range tests {
		if got := SplitKey(tt.key); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestSplitKeyRoundTrip(t *testing.T) {
	ids := []string{"a", "b", "c"}
	if got := SplitKey(CompositeKey(ids)); !reflect.DeepEqual(got, ids) {
		t.Fatalf("round trip = %v, want %v", got, ids)
	}
}
