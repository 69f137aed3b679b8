package frame

import "testing"

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(nil, MaxBytes); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := New([]byte{}, MaxBytes); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestNewRejectsTooLarge(t *testing.T) {
	b := make([]byte, 10)
	if _, err := New(b, 9); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestNewAcceptsBoundary(t *testing.T) {
	b := make([]byte, 9)
	f, err := New(b, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Len() != 9 {
		t.Errorf("expected len 9, got %d", f.Len())
	}
}

func TestCloneSharesBytes(t *testing.T) {
	f, err := New([]byte{0x01, 0x02, 0x03}, MaxBytes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clone := f.Clone()

	if &f.Bytes()[0] != &clone.Bytes()[0] {
		t.Error("expected clone to share backing array with original")
	}
	if clone.Len() != f.Len() {
		t.Errorf("expected clone length %d, got %d", f.Len(), clone.Len())
	}
}

func TestReleaseOfEveryCloneIsSafe(t *testing.T) {
	f, _ := New([]byte{0xAA}, MaxBytes)
	clone := f.Clone()
	f.Release()
	clone.Release()
	// No panic, no observable effect on the data itself.
	if clone.Bytes()[0] != 0xAA {
		t.Error("expected bytes to remain readable after release")
	}
}

func TestZeroFrameIsInvalid(t *testing.T) {
	var f Frame
	if f.Valid() {
		t.Error("expected zero Frame to be invalid")
	}
}
