package core

import "testing"

func TestChecksum_ByteSumModulus(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want uint32
	}{
		{"empty", nil, 0},
		{"single byte", []byte{42}, 42},
		{"simple sum", []byte{1, 2, 3}, 6},
		{"wraps modulus", make([]byte, 100), 0},
		{"ascii payload", []byte("abc"), 97 + 98 + 99},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Checksum(tc.data); got != tc.want {
				t.Errorf("Checksum(%v): got %d, want %d", tc.data, got, tc.want)
			}
		})
	}
}

func TestChecksum_LargeInputStaysInRange(t *testing.T) {
	data := make([]byte, 1<<16)
	for i := range data {
		data[i] = 0xFF
	}
	if got := Checksum(data); got >= 10000 {
		t.Errorf("Checksum out of range: %d", got)
	}
}

func TestForgeChecksum_NeverMatches(t *testing.T) {
	data := []byte("telemetry payload")
	truth := Checksum(data)

	for candidate := uint32(0); candidate < 10000; candidate++ {
		forged := ForgeChecksum(data, candidate)
		if forged == truth {
			t.Fatalf("ForgeChecksum(candidate=%d) collided with real checksum %d", candidate, truth)
		}
	}
}

func TestForgeChecksum_CollisionNudge(t *testing.T) {
	data := []byte{5}
	truth := Checksum(data) // 5

	if got := ForgeChecksum(data, truth); got != truth+1 {
		t.Errorf("collision nudge: got %d, want %d", got, truth+1)
	}
}
