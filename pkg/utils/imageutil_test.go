package utils

import (
	"encoding/base64"
	"testing"
)

func TestDecodeBase64Image(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	encoded := base64.StdEncoding.EncodeToString(raw)

	got, err := DecodeBase64Image(encoded)
	if err != nil {
		t.Fatalf("DecodeBase64Image: %v", err)
	}
	if string(got) != string(raw) {
		t.Fatalf("decoded = %v, want %v", got, raw)
	}
}

func TestDecodeBase64ImageDataURI(t *testing.T) {
	raw := []byte("image-bytes")
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	got, err := DecodeBase64Image(payload)
	if err != nil {
		t.Fatalf("DecodeBase64Image: %v", err)
	}
	if string(got) != string(raw) {
		t.Fatalf("decoded = %q, want %q", got, raw)
	}
}

func TestDecodeBase64ImageErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"not base64", "!!! definitely not base64 !!!"},
		{"data uri without comma", "data:image/png;base64"},
	}
	for _, tc := range cases {
		if _, err := DecodeBase64Image(tc.payload); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestDownloadName(t *testing.T) {
	cases := []struct {
		original string
		ext      string
		want     string
	}{
		{"photo.jpg", "png", "removed_bg_photo.png"},
		{"photo.jpg", "jpeg", "removed_bg_photo.jpeg"},
		{"archive.tar.gz", "png", "removed_bg_archive.tar.png"},
		{"noext", "png", "removed_bg_noext.png"},
		{"", "png", "removed_bg_image.png"},
		{".png", "webp", "removed_bg_image.webp"},
	}
	for _, tc := range cases {
		if got := DownloadName(tc.original, tc.ext); got != tc.want {
			t.Errorf("DownloadName(%q, %q) = %q, want %q", tc.original, tc.ext, got, tc.want)
		}
	}
}
