package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

func ValidateFileName(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if len(filename) > 255 {
		return fmt.Errorf("filename too long (max 255 characters)")
	}

	if !utf8.ValidString(filename) {
		return fmt.Errorf("filename contains invalid UTF-8 characters")
	}

	invalidChars := []string{"<", ">", ":", "\"", "|", "?", "*", "\x00"}
	for _, char := range invalidChars {
		if strings.Contains(filename, char) {
			return fmt.Errorf("filename contains invalid character: %s", char)
		}
	}
	return nil
}

// ValidatePDF checks name, extension and size of an uploaded PDF. maxSize <= 0 disables the size check.
func ValidatePDF(filename string, size, maxSize int64) error {
	if err := ValidateFileName(filename); err != nil {
		return err
	}

	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return fmt.Errorf("only PDF files are accepted")
	}

	if size <= 0 {
		return fmt.Errorf("file is empty")
	}

	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", size, maxSize)
	}
	return nil
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// ValidateImage checks name, extension and size of an uploaded gallery image.
func ValidateImage(filename string, size, maxSize int64) error {
	if err := ValidateFileName(filename); err != nil {
		return err
	}

	if !imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return fmt.Errorf("only jpg, png, webp and gif images are accepted")
	}

	if size <= 0 {
		return fmt.Errorf("file is empty")
	}

	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", size, maxSize)
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}
