package utils

import "testing"

func TestParseTimeParam(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		param   string
		want    int
		absent  bool
		wantErr bool
	}{
		{name: "full spec", text: "t=1h2m3s", param: "t", want: 3723},
		{name: "minutes and seconds", text: "https://example.com/v t=1m30s", param: "t", want: 90},
		{name: "stop param", text: "https://example.com/v t=1m30s n=2m", param: "n", want: 120},
		{name: "start before stop token", text: "https://example.com/v t=1m30s n=2m", param: "t", want: 90},
		{name: "seconds only", text: "t=45s", param: "t", want: 45},
		{name: "hours only", text: "t=2h", param: "t", want: 7200},
		{name: "token at end of text", text: "some text n=10s", param: "n", want: 10},
		{name: "absent token", text: "https://example.com/v", param: "t", absent: true},
		{name: "empty text", text: "", param: "t", absent: true},
		{name: "empty value", text: "t=", param: "t", want: 0},
		{name: "malformed value", text: "t=abc", param: "t", wantErr: true},
		{name: "trailing garbage", text: "t=1m30sx", param: "t", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeParam(tt.text, tt.param)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.absent {
				if got != nil {
					t.Fatalf("expected absent result, got %d", *got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a value, got absent")
			}
			if *got != tt.want {
				t.Errorf("expected %d seconds, got %d", tt.want, *got)
			}
		})
	}
}

func TestParseTimeParamNeverErrorsWhenAbsent(t *testing.T) {
	// Free text without the token must yield absent, not an error.
	for _, text := range []string{"hello world", "time=5m", "nt=3s x"} {
		got, err := ParseTimeParam(text, "t")
		if err != nil {
			t.Errorf("ParseTimeParam(%q) returned error: %v", text, err)
		}
		if got != nil && text == "hello world" {
			t.Errorf("ParseTimeParam(%q) returned %d, expected absent", text, *got)
		}
	}
}
