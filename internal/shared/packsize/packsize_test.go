package packsize

import (
	"testing"

	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
	"github.com/shopspring/decimal"
)

func TestUnits(t *testing.T) {
	cases := []struct {
		descriptor string
		want       int64
	}{
		{"10x10's", 100},
		{"100's", 100},
		{"10 X 10 S", 100},
		{"1x60's", 60},
		{"30's", 30},
		{"5X6'S", 30},
	}
	for _, tc := range cases {
		got, err := Units(tc.descriptor)
		if err != nil {
			t.Fatalf("Units(%q): %v", tc.descriptor, err)
		}
		if got != tc.want {
			t.Fatalf("Units(%q) = %d, want %d", tc.descriptor, got, tc.want)
		}
	}
}

func TestUnitsMalformed(t *testing.T) {
	for _, descriptor := range []string{"abc", "", "10x10x10", "x10", "10x", "'s"} {
		if _, err := Units(descriptor); !apperr.IsValidation(err) {
			t.Fatalf("Units(%q): expected validation error, got %v", descriptor, err)
		}
	}
}

func TestUnitPrice(t *testing.T) {
	price, err := UnitPrice("10x10's", decimal.NewFromInt(100), decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("UnitPrice: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("1.10")) {
		t.Fatalf("UnitPrice(10x10's, 100, 10) = %s, want 1.10", price)
	}

	price, err = UnitPrice("100's", decimal.NewFromInt(110), decimal.Zero)
	if err != nil {
		t.Fatalf("UnitPrice: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("1.10")) {
		t.Fatalf("UnitPrice(100's, 110, 0) = %s, want 1.10", price)
	}
}

func TestUnitPriceZeroUnits(t *testing.T) {
	if _, err := UnitPrice("0's", decimal.NewFromInt(100), decimal.Zero); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for zero units, got %v", err)
	}
}
