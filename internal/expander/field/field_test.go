package field

import (
	"bytes"
	"testing"
)

func TestM31Arithmetic(t *testing.T) {
	f := NewM31()

	t.Run("AddSubRoundTrip", func(t *testing.T) {
		a := f.NewElementFromUint64(123456)
		b := f.NewElementFromUint64(987654)
		sum := a.Add(b)
		back := sum.Sub(b)
		if !back.Equal(a) {
			t.Fatalf("a+b-b = %v, want %v", back, a)
		}
	})

	t.Run("Inverse", func(t *testing.T) {
		a := f.NewElementFromUint64(42)
		inv, ok := a.Inv()
		if !ok {
			t.Fatal("expected inverse to exist")
		}
		prod := a.Mul(inv)
		if !prod.Equal(f.One()) {
			t.Fatalf("a*a^-1 = %v, want 1", prod)
		}
	})

	t.Run("ZeroHasNoInverse", func(t *testing.T) {
		if _, ok := f.Zero().Inv(); ok {
			t.Fatal("expected zero to have no inverse")
		}
	})

	t.Run("BytesRoundTrip", func(t *testing.T) {
		a := f.NewElementFromUint64(5000000)
		b, err := f.NewElement(a.Bytes())
		if err != nil {
			t.Fatalf("NewElement: %v", err)
		}
		if !b.Equal(a) {
			t.Fatalf("round trip mismatch: got %v, want %v", b, a)
		}
	})

	t.Run("InvTwo", func(t *testing.T) {
		two := f.NewElementFromUint64(2)
		if !two.Mul(f.InvTwo()).Equal(f.One()) {
			t.Fatal("2 * INV_2 != 1")
		}
	})
}

func TestGoldilocksArithmetic(t *testing.T) {
	f := NewGoldilocks()

	t.Run("Inverse", func(t *testing.T) {
		a := f.NewElementFromUint64(777)
		inv, ok := a.Inv()
		if !ok {
			t.Fatal("expected inverse")
		}
		if !a.Mul(inv).Equal(f.One()) {
			t.Fatal("a * a^-1 != 1")
		}
	})

	t.Run("WrapsModulus", func(t *testing.T) {
		a := f.NewElementFromUint64(goldilocksModulus)
		if !a.IsZero() {
			t.Fatalf("modulus should reduce to zero, got %v", a)
		}
	})
}

func TestGF2_128Arithmetic(t *testing.T) {
	f := NewGF2_128()

	t.Run("AddIsItsOwnInverse", func(t *testing.T) {
		a := f.NewElementFromUint64(0xdeadbeef)
		b := f.NewElementFromUint64(0xcafef00d)
		if !a.Add(b).Add(b).Equal(a) {
			t.Fatal("characteristic-2 add should be self-inverse")
		}
	})

	t.Run("MulOneIsIdentity", func(t *testing.T) {
		a := f.NewElementFromUint64(0x12345678)
		if !a.Mul(f.One()).Equal(a) {
			t.Fatal("a * 1 != a")
		}
	})

	t.Run("Inverse", func(t *testing.T) {
		a := f.NewElementFromUint64(0x99)
		inv, ok := a.Inv()
		if !ok {
			t.Fatal("expected inverse")
		}
		if !a.Mul(inv).Equal(f.One()) {
			t.Fatal("a * a^-1 != 1")
		}
	})
}

func TestPackedSimdField(t *testing.T) {
	base := NewM31()
	desc := NewPackedDescriptor(base, 4)

	lanes := []Element{
		base.NewElementFromUint64(1),
		base.NewElementFromUint64(2),
		base.NewElementFromUint64(3),
		base.NewElementFromUint64(4),
	}

	t.Run("UnpackPackRoundTrip", func(t *testing.T) {
		packed, err := desc.Pack(lanes)
		if err != nil {
			t.Fatalf("Pack: %v", err)
		}
		unpacked := packed.Unpack()
		for i := range lanes {
			if !unpacked[i].Equal(lanes[i]) {
				t.Fatalf("lane %d: got %v, want %v", i, unpacked[i], lanes[i])
			}
		}
	})

	t.Run("HorizontalSum", func(t *testing.T) {
		packed, _ := desc.Pack(lanes)
		sum := packed.HorizontalSum()
		want := base.NewElementFromUint64(10)
		if !sum.Equal(want) {
			t.Fatalf("horizontal sum = %v, want %v", sum, want)
		}
	})

	t.Run("Scale", func(t *testing.T) {
		packed, _ := desc.Pack(lanes)
		scaled := packed.Scale(base.NewElementFromUint64(2)).Unpack()
		for i := range lanes {
			want := lanes[i].Mul(base.NewElementFromUint64(2))
			if !scaled[i].Equal(want) {
				t.Fatalf("lane %d: got %v, want %v", i, scaled[i], want)
			}
		}
	})
}

func TestBN254FrBytesRoundTrip(t *testing.T) {
	f := NewBN254Fr()
	a := f.NewElementFromUint64(31337)
	b, err := f.NewElement(a.Bytes())
	if err != nil {
		t.Fatalf("NewElement: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("round trip mismatch")
	}
}
