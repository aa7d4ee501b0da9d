package schema

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type order struct {
	ID       string  `validate:"required"`
	Quantity int     `validate:"gt=0"`
	Price    float64 `validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	s := Struct[order]()

	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"valid", order{ID: "o-1", Quantity: 2, Price: 9.5}, true},
		{"valid pointer", &order{ID: "o-1", Quantity: 1}, true},
		{"missing id", order{Quantity: 2}, false},
		{"zero quantity", order{ID: "o-1"}, false},
		{"nil pointer", (*order)(nil), false},
		{"wrong type", map[string]any{"ID": "o-1", "Quantity": 2}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Validate(tt.value); got != tt.expected {
				t.Errorf("Validate(%v) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}

	if s.String() != "schema.order" {
		t.Errorf("unexpected String(): %q", s.String())
	}
}

func TestStruct_CheckExplains(t *testing.T) {
	err := Check(order{ID: "o-1"}, Struct[order](), "orders")
	if err == nil {
		t.Fatal("expected error")
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validator.ValidationErrors in chain, got %v", err)
	}
	if verrs[0].Field() != "Quantity" {
		t.Errorf("expected Quantity to fail, got %s", verrs[0].Field())
	}

	err = Check("nope", Struct[order](), "orders")
	var terr *TypeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TypeError in chain, got %v", err)
	}
}
