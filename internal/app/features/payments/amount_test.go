package payments

import (
	"math"
	"testing"

	"github.com/dalemusser/agreeverse/internal/app/system/apierr"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		want    int64
		wantErr bool
	}{
		{"whole", 40, 4000, false},
		{"cents", 49.99, 4999, false},
		{"rounds half up", 0.125, 13, false},
		{"listing cap", 1e12, 100000000000000, false},
		{"largest chargeable", 9e16, 9000000000000000000, false},
		{"just over int64", 1e17, 0, true},
		{"huge", 1e300, 0, true},
		{"infinite", math.Inf(1), 0, true},
		{"nan", math.NaN(), 0, true},
		{"zero", 0, 0, true},
		{"negative", -5, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := minorUnits(tt.price)
			if tt.wantErr {
				if apierr.KindOf(err) != apierr.Validation {
					t.Fatalf("minorUnits(%v) error = %v, want Validation", tt.price, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("minorUnits(%v): %v", tt.price, err)
			}
			if got != tt.want {
				t.Errorf("minorUnits(%v) = %d, want %d", tt.price, got, tt.want)
			}
		})
	}
}
