package services

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const maxURLContentSize = 10 * 1024 * 1024 // 10MB

// FetchURLContent tải nội dung văn bản từ một URL nguồn (tài liệu dạng url).
// Chỉ chấp nhận content-type dạng text/html hoặc text/plain.
func FetchURLContent(sourceURL string) (string, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequest("GET", sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("URL không hợp lệ: %v", err)
	}
	req.Header.Set("User-Agent", "quizforge-backend/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("không tải được nội dung từ URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("URL trả về status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/") {
		return "", fmt.Errorf("content-type không hỗ trợ: %s", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxURLContentSize))
	if err != nil {
		return "", fmt.Errorf("lỗi đọc nội dung URL: %v", err)
	}

	text := string(body)
	if strings.Contains(contentType, "text/html") {
		text = StripHTMLTags(text)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("URL không có nội dung văn bản")
	}
	return text, nil
}

// StripHTMLTags loại bỏ script/style và tag HTML, giữ lại văn bản thuần
func StripHTMLTags(html string) string {
	reScript := regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	cleaned := reScript.ReplaceAllString(html, " ")

	reTag := regexp.MustCompile(`(?s)<[^>]+>`)
	cleaned = reTag.ReplaceAllString(cleaned, " ")

	reSpace := regexp.MustCompile(`[ \t]{2,}`)
	cleaned = reSpace.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}
