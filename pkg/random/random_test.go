package random

import (
	"bytes"
	"testing"
)

// TestNew tests New.
func TestNew(t *testing.T) {
	first, err := New(CollisionResistantLength)
	if err != nil {
		t.Fatal("unable to create random data:", err)
	} else if len(first) != CollisionResistantLength {
		t.Error("random data did not have expected length:", len(first), "!=", CollisionResistantLength)
	}
	second, err := New(CollisionResistantLength)
	if err != nil {
		t.Fatal("unable to create random data:", err)
	} else if bytes.Equal(first, second) {
		t.Error("consecutive random values are identical")
	}
}
