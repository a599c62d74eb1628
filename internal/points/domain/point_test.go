package points

import "testing"

func TestKind(t *testing.T) {
	for _, kind := range []Kind{KindAnalogInput, KindAnalogOutput, KindDigitalInput, KindDigitalOutput} {
		if !kind.Valid() {
			t.Fatalf("%s must be valid", kind)
		}
	}
	if Kind("bogus").Valid() {
		t.Fatal("unknown kind must be invalid")
	}

	if KindAnalogInput.Digital() || KindAnalogOutput.Digital() {
		t.Fatal("analog kinds are not digital")
	}
	if !KindDigitalInput.Digital() || !KindDigitalOutput.Digital() {
		t.Fatal("digital kinds must report digital")
	}
}

func TestFloat(t *testing.T) {
	point := Point{Value: "42.5"}
	value, err := point.Float()
	if err != nil {
		t.Fatalf("float: %v", err)
	}
	if value != 42.5 {
		t.Fatalf("value = %v", value)
	}

	point.Value = "off"
	if _, err := point.Float(); err == nil {
		t.Fatal("non-numeric value must fail")
	}
}

func TestOn(t *testing.T) {
	cases := map[string]bool{
		"1":     true,
		"true":  true,
		"0":     false,
		"false": false,
		"":      false,
		"42":    false,
	}
	for value, want := range cases {
		if got := (Point{Value: value}).On(); got != want {
			t.Fatalf("On(%q) = %v, want %v", value, got, want)
		}
	}
}
