package helpers

import (
	"reflect"
	"testing"
)

func TestParseCSVList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , , b ", []string{"a", "b"}},
	}
	for _, tc := range cases {
		if got := ParseCSVList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseCSVList(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}
