package timeouts

import (
	"testing"
	"time"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})

	if got := Short(); got != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", got)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium() = %v, want default %v", got, DefaultMedium)
	}
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping() = %v, want default %v", got, DefaultPing)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Minute, Long: time.Hour})
	Reset()

	if Ping() != DefaultPing || Long() != DefaultLong {
		t.Errorf("Reset did not restore defaults: ping=%v long=%v", Ping(), Long())
	}
}
