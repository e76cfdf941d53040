package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// noVisionNotice 当图片无法进入厂商视觉通道时追加到正文的降级提示
const noVisionNotice = "\n\n[Note: This model does not support direct image analysis. Please describe the image or refer to vision-capable models.]"

// maxImageBytes 拉取远程图片的大小上限
const maxImageBytes = 20 * 1024 * 1024

var dataURIPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)

// fetchImageAsBase64 把图片引用转为 (mimeType, base64 数据)。
// data URI 直接拆解；http(s) 地址拉取后编码。
func fetchImageAsBase64(ctx context.Context, client *http.Client, url string) (string, string, error) {
	if strings.HasPrefix(url, "data:") {
		m := dataURIPattern.FindStringSubmatch(url)
		if m == nil {
			return "", "", fmt.Errorf("malformed data URI")
		}
		return m[1], m[2], nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("image fetch failed: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", "", err
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = guessMediaType(url)
	}
	return mime, base64.StdEncoding.EncodeToString(raw), nil
}

// guessMediaType 按 URL 特征猜测图片类型，默认 jpeg
func guessMediaType(url string) string {
	switch {
	case strings.Contains(url, ".png") || strings.Contains(url, "image/png"):
		return "image/png"
	case strings.Contains(url, ".gif") || strings.Contains(url, "image/gif"):
		return "image/gif"
	case strings.Contains(url, ".webp") || strings.Contains(url, "image/webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
