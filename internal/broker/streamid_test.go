package broker

import "testing"

func TestValidateStreamId(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"", false},
		{"alpha", true},
		{"alpha-beta_123", true},
		{"ok..ok", false},
		{"has space", false},
		{"a", true},
		{string(make([]byte, 65)), false},
	}

	for _, c := range cases {
		err := ValidateStreamId(c.id)
		if c.valid && err != nil {
			t.Errorf("expected %q to be valid, got error %v", c.id, err)
		}
		if !c.valid && err == nil {
			t.Errorf("expected %q to be invalid", c.id)
		}
	}
}
