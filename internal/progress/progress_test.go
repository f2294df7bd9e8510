package progress

import "testing"

func TestHumanizeBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0.00B"},
		{1024, "1.00KiB"},
		{1536, "1.50KiB"},
		{1024 * 1024, "1.00MiB"},
	}
	for _, c := range cases {
		if got := humanizeBytes(c.in); got != c.want {
			t.Errorf("humanizeBytes(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDisabledBarIsNoOp(t *testing.T) {
	b := New(nil, 100, false)
	b.Add(50) // must not panic writing to nil io.Writer
	b.Done()
}
