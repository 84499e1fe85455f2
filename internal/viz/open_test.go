package viz

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{"darwin", "open /tmp/g.html", false},
		{"linux", "xdg-open /tmp/g.html", false},
		{"windows", "rundll32 url.dll,FileProtocolHandler /tmp/g.html", false},
		{"plan9", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := openCommand(tt.goos, "/tmp/g.html")
			if (err != nil) != tt.wantErr {
				t.Fatalf("openCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := strings.Join(cmd.Args, " "); got != tt.want {
				t.Errorf("args = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if err := Open(filepath.Join(t.TempDir(), "none.html")); err == nil {
		t.Error("expected error for missing file")
	}
}
