package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Email(tt.input); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ravi Kumar", "Ravi Kumar"},
		{"  Ravi   Kumar  ", "Ravi Kumar"},
		{"", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"9999999999", "9999999999"},
		{"98765 43210", "9876543210"},
		{"+91-98765-43210", "919876543210"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Phone(tt.input); got != tt.want {
				t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhoneInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"9876543210", "9876543210"},
		{" 98765 43210 ", "9876543210"},
		{"9876-543-210", "9876543210"},
		{"(987) 654.3210", "9876543210"},
		{"98765a43210", "98765a43210"},
		{"+91 9876543210", "+91 9876543210"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := PhoneInput(tt.input); got != tt.want {
				t.Errorf("PhoneInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
