package table

import (
	"math"
	"testing"
)

func TestValueFloatCoercion(t *testing.T) {
	cases := []struct {
		in   Value
		want float64
		ok   bool
	}{
		{String("12"), 12, true},
		{String(" 3.5 "), 3.5, true},
		{String("-1e3"), -1000, true},
		{String(".5"), 0.5, true},
		{String("0x1F"), 31, true},
		{String("0b101"), 5, true},
		{String("0o17"), 15, true},
		{Number(7), 7, true},
		{Bool(true), 1, true},
		{Bool(false), 0, true},
		{String(""), 0, false},
		{String("   "), 0, false},
		{String("abc"), 0, false},
		{String("1,000"), 0, false},
		{String("1_000"), 0, false},
		{String("Infinity"), 0, false},
		{String("NaN"), 0, false},
		{String("inf"), 0, false},
		{String("1e400"), 0, false},
		{String("-0x10"), 0, false},
		{Number(math.Inf(1)), 0, false},
		{Missing(), 0, false},
	}
	for _, c := range cases {
		got, ok := c.in.Float()
		if ok != c.ok {
			t.Errorf("%q: ok=%v, want %v", c.in.String(), ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("%q: got %v, want %v", c.in.String(), got, c.want)
		}
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{String("a"), "a"},
		{Number(1), "1"},
		{Number(1.5), "1.5"},
		{Number(-0.25), "-0.25"},
		{Number(1e21), "1e+21"},
		{Number(1.5e-7), "1.5e-7"},
		{Number(0.000001), "0.000001"},
		{Number(123456789012), "123456789012"},
		{Missing(), "undefined"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestValueMarshalJSON(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{String("x"), `"x"`},
		{Number(2.5), `2.5`},
		{Missing(), `null`},
		{Number(math.NaN()), `null`},
	}
	for _, c := range cases {
		in, want := c.in, c.want
		b, err := in.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != want {
			t.Errorf("MarshalJSON = %s, want %s", b, want)
		}
	}
}

func TestBoolValue(t *testing.T) {
	if got := Bool(true).String(); got != "true" {
		t.Fatalf("Bool(true).String() = %q", got)
	}
	if Bool(false).Kind() != KindBool {
		t.Fatalf("kind = %v", Bool(false).Kind())
	}
	b, err := Bool(false).MarshalJSON()
	if err != nil || string(b) != "false" {
		t.Fatalf("MarshalJSON = %s, %v", b, err)
	}
	if Bool(true) == Number(1) {
		t.Fatalf("a boolean and a number must stay distinct")
	}
}
