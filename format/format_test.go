package format

import "testing"

func ptr[T any](v T) *T { return &v }

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"nil string", Value[string](nil), Fallback},
		{"empty string", Value(ptr("")), Fallback},
		{"string", Value(ptr("Female")), "Female"},
		{"zero int is kept", Value(ptr(0)), "0"},
		{"int", Value(ptr(28)), "28"},
		{"zero float is kept", Value(ptr(0.0)), "0"},
		{"whole float", Value(ptr(160.0)), "160"},
		{"fractional float", Value(ptr(98.6)), "98.6"},
		{"nil float", Value[float64](nil), Fallback},
		{"false is kept", Value(ptr(false)), "false"},
		{"custom fallback", ValueOr[string](nil, "Checkup"), "Checkup"},
		{"custom fallback on empty", ValueOr(ptr(""), "Checkup"), "Checkup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	if Text("") != Fallback {
		t.Error("empty text should fall back")
	}
	if Text("x") != "x" {
		t.Error("non-empty text should pass through")
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, Fallback},
		{ptr(0.0), "0"},
		{ptr(120.0), "120"},
		{ptr(99.5), "99.5"},
	}
	for _, tt := range tests {
		if got := Number(tt.in); got != tt.want {
			t.Errorf("Number() = %q, want %q", got, tt.want)
		}
	}
}

func TestDateOfBirth(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want string
	}{
		{"iso date", ptr("1990-05-02"), "05/02/1990"},
		{"rfc3339", ptr("1996-08-23T00:00:00Z"), "08/23/1996"},
		{"iso datetime", ptr("1996-08-23T10:11:12"), "08/23/1996"},
		{"us date", ptr("08/23/1996"), "08/23/1996"},
		{"long form", ptr("August 23, 1996"), "08/23/1996"},
		{"short form", ptr("Aug 3, 1996"), "08/03/1996"},
		{"unparseable", ptr("not-a-date"), "not-a-date"},
		{"nil", nil, Fallback},
		{"empty", ptr(""), Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateOfBirth(tt.raw); got != tt.want {
				t.Errorf("DateOfBirth() = %q, want %q", got, tt.want)
			}
		})
	}
}
