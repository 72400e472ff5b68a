package security

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Lowercased file extension
	DetectedMIME string // MIME type sniffed from the content
	Error        string // Error message if validation failed
}

// Magic byte signatures per allowed resume extension
var magicBytes = map[string][][]byte{
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                         // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                         // ZIP (PK..)
	".txt":  {},                                                 // no signature; MIME sniffing decides
}

// MIME types accepted per extension. Container formats are listed because
// sniffing does not always see past the OLE or ZIP wrapper.
var allowedMIMETypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	".txt":  {"text/plain"},
}

var ErrInvalidEncoding = errors.New("file content is not valid base64")

// DecodeResumeContent decodes a base64 payload, with or without a
// "data:<mime>;base64," prefix.
func DecodeResumeContent(content string) ([]byte, error) {
	if strings.HasPrefix(content, "data:") {
		comma := strings.IndexByte(content, ',')
		if comma < 0 || !strings.HasSuffix(content[:comma], ";base64") {
			return nil, ErrInvalidEncoding
		}
		content = content[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	return data, nil
}

// ValidateResume checks extension whitelist, size, magic bytes and sniffed
// MIME type. maxBytes <= 0 disables the size check.
func ValidateResume(filename string, data []byte, maxBytes int64) FileValidationResult {
	result := FileValidationResult{}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	allowed, ok := allowedMIMETypes[ext]
	if !ok {
		result.Error = fmt.Sprintf("file extension not allowed: %s (allowed: %s)", ext, strings.Join(AllowedExtensions(), ", "))
		return result
	}

	if len(data) == 0 {
		result.Error = "file is empty"
		return result
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		result.Error = fmt.Sprintf("file exceeds maximum size of %d bytes", maxBytes)
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	detected := mimetype.Detect(data)
	result.DetectedMIME = detected.String()
	for _, m := range allowed {
		if detected.Is(m) {
			result.Valid = true
			return result
		}
	}
	result.Error = "MIME type not allowed: " + result.DetectedMIME
	return result
}

func validateMagicBytes(ext string, data []byte) bool {
	signatures := magicBytes[ext]
	if len(signatures) == 0 {
		return true
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// AllowedExtensions returns the accepted resume extensions in a stable order.
func AllowedExtensions() []string {
	return []string{".pdf", ".doc", ".docx", ".txt"}
}
