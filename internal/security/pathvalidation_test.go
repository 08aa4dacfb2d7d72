package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	reportDir := filepath.Join(tmpDir, "reports")
	outsideDir := filepath.Join(tmpDir, "outside")
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		t.Fatalf("failed to create report directory: %v", err)
	}
	if err := os.MkdirAll(outsideDir, 0755); err != nil {
		t.Fatalf("failed to create outside directory: %v", err)
	}

	outsideFile := filepath.Join(outsideDir, "secret.txt")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0644); err != nil {
		t.Fatalf("failed to create outside file: %v", err)
	}

	// Symlink inside the report dir pointing out of it
	symlinkPath := filepath.Join(reportDir, "evil-symlink")
	if err := os.Symlink(outsideDir, symlinkPath); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{
			name:      "valid path within directory",
			filePath:  filepath.Join(reportDir, "built_up_area.png"),
			safeDir:   reportDir,
			wantError: false,
		},
		{
			name:      "valid nested path",
			filePath:  filepath.Join(reportDir, "riyadh", "20260829_120000", "built_up_area.png"),
			safeDir:   reportDir,
			wantError: false,
		},
		{
			name:      "path traversal with ..",
			filePath:  filepath.Join(reportDir, "..", "outside", "secret.txt"),
			safeDir:   reportDir,
			wantError: true,
		},
		{
			name:      "path traversal at start",
			filePath:  "../../../etc/passwd",
			safeDir:   reportDir,
			wantError: true,
		},
		{
			name:      "absolute path outside safe dir",
			filePath:  "/etc/passwd",
			safeDir:   reportDir,
			wantError: true,
		},
		{
			name:      "symlink escape through linked directory",
			filePath:  filepath.Join(symlinkPath, "secret.txt"),
			safeDir:   reportDir,
			wantError: true,
		},
		{
			name:      "symlink escape accessing link directly",
			filePath:  symlinkPath,
			safeDir:   reportDir,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Riyadh", "Riyadh"},
		{"Khamis Mushait", "Khamis_Mushait"},
		{"a/../b", "a_.._b"},
		{"..", "unknown"},
		{"", "unknown"},
		{"name with  spaces", "name_with_spaces"},
		{"dots.and-dashes_ok", "dots.and-dashes_ok"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
