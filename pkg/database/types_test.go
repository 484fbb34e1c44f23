package database

import (
	"reflect"
	"testing"
)

func TestStringArrayScan(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want StringArray
	}{
		{"nil", nil, nil},
		{"json", []byte(`["Gym","Pool"]`), StringArray{"Gym", "Pool"}},
		{"json string", `["a"]`, StringArray{"a"}},
		{"postgres", "{Gym,Pool}", StringArray{"Gym", "Pool"}},
		{"postgres quoted", `{"Power Backup","a,b"}`, StringArray{"Power Backup", "a,b"}},
		{"postgres empty", "{}", StringArray{}},
		{"plain", "Gym", StringArray{"Gym"}},
		{"empty", "", StringArray{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringArray
			if err := got.Scan(tt.in); err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStringArrayScanUnsupported(t *testing.T) {
	var a StringArray
	if err := a.Scan(42); err == nil {
		t.Fatal("expected error for int input")
	}
}

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray(nil).Value()
	if err != nil || v != "[]" {
		t.Fatalf("nil Value() = %v, %v", v, err)
	}

	v, err = StringArray{"Gym", "Pool"}.Value()
	if err != nil || v != `["Gym","Pool"]` {
		t.Fatalf("Value() = %v, %v", v, err)
	}
}

func TestNewStringArray(t *testing.T) {
	got := NewStringArray(" Gym ", "", "Pool", "  ")
	want := StringArray{"Gym", "Pool"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NewStringArray() = %#v, want %#v", got, want)
	}
	if got := NewStringArray(); got == nil || len(got) != 0 {
		t.Errorf("NewStringArray() with no items = %#v, want empty", got)
	}
}
