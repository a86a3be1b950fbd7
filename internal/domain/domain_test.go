package domain

import (
	"errors"
	"testing"
)

func TestParseRetentionPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    RetentionPolicy
		wantErr bool
	}{
		{"keep-all", KeepAll, false},
		{"0", KeepAll, false},
		{"delete-on-success", DeleteOnSuccess, false},
		{"DELETE_ON_SUCCESS", DeleteOnSuccess, false},
		{"1", DeleteOnSuccess, false},
		{"delete-when-exceed", DeleteWhenExceed, false},
		{" 2 ", DeleteWhenExceed, false},
		{"sometimes", KeepAll, true},
		{"", KeepAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRetentionPolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRetentionPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseRetentionPolicy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRetentionPolicy_RoundTrip(t *testing.T) {
	for _, p := range []RetentionPolicy{KeepAll, DeleteOnSuccess, DeleteWhenExceed} {
		got, err := ParseRetentionPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("round trip %v: got %v, err %v", p, got, err)
		}
	}
	if RetentionPolicy(7).Valid() {
		t.Error("RetentionPolicy(7).Valid() = true, want false")
	}
	if RetentionPolicy(7).String() != "unknown" {
		t.Errorf("RetentionPolicy(7).String() = %s, want unknown", RetentionPolicy(7).String())
	}
}

func TestBatch_Accessors(t *testing.T) {
	b := NewBatch("b1", "/tmp/out_1.h264", []FrameHandle{"/tmp/a.jpg", "/tmp/b.jpg", "/tmp/c.jpg"})

	if b.Size() != 3 || b.Empty() {
		t.Fatalf("Size() = %d, Empty() = %v", b.Size(), b.Empty())
	}
	if b.First() != "/tmp/a.jpg" || b.Last() != "/tmp/c.jpg" {
		t.Errorf("First/Last = %s/%s", b.First(), b.Last())
	}
	if b.Output.Name() != "out_1.h264" {
		t.Errorf("Output.Name() = %s", b.Output.Name())
	}

	empty := NewBatch("b2", "", nil)
	if !empty.Empty() || empty.First() != "" || empty.Last() != "" {
		t.Error("empty batch accessors should return zero values")
	}
}
