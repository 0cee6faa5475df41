package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":        "jpg",
		"dir/a.b/c.webp":   "webp",
		"noext":            "",
		"/tmp/archive.png": "png",
	}
	for in, want := range tests {
		if got := GetFileExtension(in); got != want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	if !IsImageFile("a.jpeg") || !IsImageFile("b.WEBP") {
		t.Error("Expected image extensions to match")
	}
	if IsImageFile("notes.txt") {
		t.Error("Expected txt not to be an image")
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		requested, input, want string
	}{
		{"", "a.png", "png"},
		{"", "a.gif", "jpg"},
		{".WEBP", "a.png", "webp"},
		{"jpeg", "a.png", "jpeg"},
	}
	for _, tt := range tests {
		got, err := OutputFormat(tt.requested, tt.input)
		if err != nil {
			t.Errorf("OutputFormat(%q, %q) failed: %v", tt.requested, tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("OutputFormat(%q, %q) = %q, want %q", tt.requested, tt.input, got, tt.want)
		}
	}
	if _, err := OutputFormat("gif", "a.png"); err == nil {
		t.Error("Expected error for gif output")
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"/photos/cat.png", "", filepath.Join("out", "p_cat_cropped.png")},
		{"/photos/cat.png", "webp", filepath.Join("out", "p_cat_cropped.webp")},
		{"https://example.com/img/dog.jpg?size=large", "", filepath.Join("out", "p_dog_cropped.jpg")},
		{"https://example.com/", "", filepath.Join("out", "p_image_cropped.jpg")},
	}
	for _, tt := range tests {
		if got := GenerateOutputFilename(tt.input, "out", "p_", "_cropped", tt.format); got != tt.want {
			t.Errorf("GenerateOutputFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.txt", filepath.Join("sub", "c.png")} {
		path := filepath.Join(dir, name)
		if err := EnsureDir(filepath.Dir(path)); err != nil {
			t.Fatalf("EnsureDir failed: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	files, err := ListImageFiles(dir)
	if err != nil {
		t.Fatalf("ListImageFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 images, got %v", files)
	}
	if !FileExists(filepath.Join(dir, "a.jpg")) || FileExists(dir) {
		t.Error("Unexpected FileExists result")
	}
	if !DirExists(dir) || DirExists(filepath.Join(dir, "a.jpg")) {
		t.Error("Unexpected DirExists result")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(` a:b*c?.`); got != "a_b_c_" {
		t.Errorf("Unexpected sanitized name %q", got)
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		512:         "512 B",
		2048:        "2.0 KB",
		5 * 1 << 20: "5.0 MB",
	}
	for in, want := range tests {
		if got := FormatFileSize(in); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", in, got, want)
		}
	}
}
