package reciprocal

import "testing"

func TestReciprocal_KnownVectors(t *testing.T) {
	cases := []struct {
		d    uint32
		want uint64
	}{
		{3, 12297829382473034410},
		{13, 11351842506898185609},
		{33, 17887751829051686415},
		{65537, 18446462603027742720},
		{15000001, 10316166306300415204},
		{3845182035, 10302264209224146340},
		{0xFFFFFFFF, 9223372039002259456},
	}

	for _, c := range cases {
		if got := Reciprocal(c.d); got != c.want {
			t.Errorf("Reciprocal(%d) = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestIsZeroOrPowerOfTwo(t *testing.T) {
	for _, d := range []uint32{0, 1, 2, 4, 1024, 1 << 31} {
		if !IsZeroOrPowerOfTwo(d) {
			t.Errorf("IsZeroOrPowerOfTwo(%d) = false, want true", d)
		}
	}
	for _, d := range []uint32{3, 5, 6, 7, 100, 0xFFFFFFFF} {
		if IsZeroOrPowerOfTwo(d) {
			t.Errorf("IsZeroOrPowerOfTwo(%d) = true, want false", d)
		}
	}
}
