package alloc

import "testing"

func TestNewChannelsLayout(t *testing.T) {
	c, err := NewChannels(2, 4)
	if err != nil {
		t.Fatalf("NewChannels: %v", err)
	}
	if len(c.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(c.Rows))
	}
	for ch, row := range c.Rows {
		if len(row) != 4 {
			t.Fatalf("row %d: got length %d, want 4", ch, len(row))
		}
	}

	// Rows must share one backing array (Zero() relies on this to touch
	// every channel in one pass).
	c.Rows[0][0] = 1
	c.Rows[1][0] = 2
	if c.backing[0] != 1 || c.backing[4] != 2 {
		t.Fatalf("rows are not views into a shared backing array")
	}
}

func TestNewChannelsZero(t *testing.T) {
	c, err := NewChannels(2, 3)
	if err != nil {
		t.Fatalf("NewChannels: %v", err)
	}
	for ch := range c.Rows {
		for i := range c.Rows[ch] {
			c.Rows[ch][i] = 9
		}
	}
	c.Zero()
	for ch := range c.Rows {
		for i, v := range c.Rows[ch] {
			if v != 0 {
				t.Fatalf("Rows[%d][%d] = %v after Zero, want 0", ch, i, v)
			}
		}
	}
}

func TestNewChannelsInvalidShape(t *testing.T) {
	cases := []struct {
		channels, samplesPerChannel int
	}{
		{0, 10},
		{-1, 10},
		{2, -1},
	}
	for _, c := range cases {
		if _, err := NewChannels(c.channels, c.samplesPerChannel); err == nil {
			t.Errorf("NewChannels(%d, %d): got nil error, want error", c.channels, c.samplesPerChannel)
		}
	}
}

func TestNewChannelsOverflow(t *testing.T) {
	const big = 1 << 40
	if _, err := NewChannels(big, big); err == nil {
		t.Fatalf("NewChannels(%d, %d): got nil error, want overflow error", big, big)
	}
}
