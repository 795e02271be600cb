package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{name: "valid", filename: "notes.pdf", size: 100},
		{name: "upper case extension", filename: "NOTES.PDF", size: 100},
		{name: "wrong extension", filename: "notes.docx", size: 100, wantErr: true},
		{name: "empty file", filename: "notes.pdf", size: 0, wantErr: true},
		{name: "too big", filename: "notes.pdf", size: 1001, wantErr: true},
		{name: "bad character", filename: "no|tes.pdf", size: 100, wantErr: true},
		{name: "no name", filename: "", size: 100, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePDF(tt.filename, tt.size, 1000)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.NoError(t, ValidatePDF("big.pdf", 1<<40, 0), "zero max disables the size check")
}

func TestValidateImage(t *testing.T) {
	for _, name := range []string{"annual-day.jpg", "Stage.JPEG", "topper.png", "hall.webp", "cheer.gif"} {
		assert.NoError(t, ValidateImage(name, 10, 1000), name)
	}
	assert.Error(t, ValidateImage("notes.pdf", 10, 1000))
	assert.Error(t, ValidateImage("photo.jpg", 0, 1000))
	assert.Error(t, ValidateImage("photo.jpg", 1001, 1000))
	assert.Error(t, ValidateImage("ph?oto.jpg", 10, 1000))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("student@institute.in"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("student@"))
	assert.Error(t, ValidateEmail("not an email"))
}
