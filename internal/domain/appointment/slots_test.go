package appointment

import (
	"reflect"
	"testing"
)

func TestDailySlots(t *testing.T) {
	want := []string{
		"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00",
		"14:00", "14:30", "15:00", "15:30", "16:00",
	}

	got := DailySlots()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DailySlots() = %v, want %v", got, want)
	}

	// Mutating the returned slice must not affect the grid.
	got[0] = "00:00"
	if DailySlots()[0] != "08:00" {
		t.Fatal("DailySlots() returned a shared backing array")
	}
}

func TestIsBookableSlot(t *testing.T) {
	tests := []struct {
		slot string
		want bool
	}{
		{"08:00", true},
		{"11:00", true},
		{"14:00", true},
		{"16:00", true},
		{"11:30", false}, // lunch gap
		{"13:30", false},
		{"16:30", false}, // past closing
		{"07:30", false},
		{"08:15", false}, // off-grid
		{"", false},
	}

	for _, tt := range tests {
		if got := IsBookableSlot(tt.slot); got != tt.want {
			t.Errorf("IsBookableSlot(%q) = %v, want %v", tt.slot, got, tt.want)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", "09:00", "09:00", false},
		{"with seconds", "09:00:00", "09:00", false},
		{"nonzero seconds truncated", "09:00:59", "09:00", false},
		{"afternoon", "14:30:00", "14:30", false},
		{"garbage", "nine am", "", true},
		{"empty", "", "", true},
		{"date not time", "2025-03-10", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTime(tt.raw)
			if tt.wantErr {
				if err != ErrInvalidSlot {
					t.Fatalf("NormalizeTime(%q) error = %v, want ErrInvalidSlot", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeTime(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeTime(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", "2025-03-10", "2025-03-10", false},
		{"rfc3339", "2025-03-10T00:00:00Z", "2025-03-10", false},
		{"rfc3339 with offset", "2025-03-10T10:30:00-05:00", "2025-03-10", false},
		{"garbage", "10/03/2025", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.raw)
			if tt.wantErr {
				if err != ErrInvalidDate {
					t.Fatalf("NormalizeDate(%q) error = %v, want ErrInvalidDate", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDate(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsSunday(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2025-03-09", true},  // Sunday
		{"2025-03-10", false}, // Monday
		{"2025-03-15", false}, // Saturday
		{"not-a-date", false},
	}

	for _, tt := range tests {
		if got := IsSunday(tt.date); got != tt.want {
			t.Errorf("IsSunday(%q) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestFreeSlots(t *testing.T) {
	tests := []struct {
		name     string
		occupied []string
		want     []string
	}{
		{
			name:     "nothing occupied",
			occupied: nil,
			want:     DailySlots(),
		},
		{
			name:     "one slot taken with seconds",
			occupied: []string{"09:00:00"},
			want: []string{
				"08:00", "08:30", "09:30", "10:00", "10:30", "11:00",
				"14:00", "14:30", "15:00", "15:30", "16:00",
			},
		},
		{
			name:     "mixed formats dedupe to one slot",
			occupied: []string{"09:00", "09:00:00"},
			want: []string{
				"08:00", "08:30", "09:30", "10:00", "10:30", "11:00",
				"14:00", "14:30", "15:00", "15:30", "16:00",
			},
		},
		{
			name:     "off-grid occupied values are ignored",
			occupied: []string{"12:00", "bogus"},
			want:     DailySlots(),
		},
		{
			name: "fully booked day",
			occupied: []string{
				"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00",
				"14:00", "14:30", "15:00", "15:30", "16:00",
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeSlots(tt.occupied)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FreeSlots(%v) = %v, want %v", tt.occupied, got, tt.want)
			}
		})
	}
}
