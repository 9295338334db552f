package conv

import "testing"

func TestIndexOffsets(t *testing.T) {
	x := NewIndex("aé世b")
	// a=1 byte, é=2 bytes, 世=3 bytes, b=1 byte
	wantStarts := []int{0, 1, 3, 6, 7}

	if got := len(x.Runes); got != 4 {
		t.Fatalf("len(Runes) = %d, want 4", got)
	}
	if got := x.Len(); got != 7 {
		t.Fatalf("Len() = %d, want 7", got)
	}
	for pos, want := range wantStarts {
		if got := x.ByteOffset(pos); got != want {
			t.Errorf("ByteOffset(%d) = %d, want %d", pos, got, want)
		}
		back, ok := x.RuneOffset(want)
		if !ok || back != pos {
			t.Errorf("RuneOffset(%d) = %d, %v, want %d, true", want, back, ok, pos)
		}
	}
}

func TestRuneOffsetRejectsMidSequence(t *testing.T) {
	x := NewIndex("é世")
	for _, off := range []int{1, 3, 4, -1, 6} {
		if _, ok := x.RuneOffset(off); ok {
			t.Errorf("RuneOffset(%d) ok = true, want false", off)
		}
	}
}

func TestIndexInvalidUTF8(t *testing.T) {
	x := NewIndex("a\xff\xfeb")
	if got := len(x.Runes); got != 4 {
		t.Fatalf("len(Runes) = %d, want 4 (one per invalid byte)", got)
	}
	for off := 0; off <= 4; off++ {
		if _, ok := x.RuneOffset(off); !ok {
			t.Errorf("RuneOffset(%d) not a boundary", off)
		}
	}
}

func TestNext(t *testing.T) {
	x := NewIndex("a世")
	tests := []struct {
		off, want int
	}{
		{0, 1},
		{1, 4},
		{4, 5}, // end of subject: one past
	}
	for _, tt := range tests {
		if got := x.Next(tt.off); got != tt.want {
			t.Errorf("Next(%d) = %d, want %d", tt.off, got, tt.want)
		}
	}
}

func TestEmptySubject(t *testing.T) {
	x := NewIndex("")
	if x.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", x.Len())
	}
	if pos, ok := x.RuneOffset(0); !ok || pos != 0 {
		t.Fatalf("RuneOffset(0) = %d, %v", pos, ok)
	}
	if got := x.Next(0); got != 1 {
		t.Fatalf("Next(0) = %d, want 1", got)
	}
}
