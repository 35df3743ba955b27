package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// ChecksumBytes tính SHA-256 của dữ liệu file upload
func ChecksumBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ChecksumText tính SHA-256 của nội dung văn bản thô (tài liệu text/url)
func ChecksumText(text string) string {
	return ChecksumBytes([]byte(text))
}
