// internal/urlutil/opengraph.go
package urlutil

import (
	"context"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// FetchOpenGraphTitle は対象ページを取得して og:title メタタグの内容を返します。
// ベストエフォートであり、HTTPエラー・タイムアウト・タグ不在のいずれでも
// 空文字を返す（エラーは返さない）。
func FetchOpenGraphTitle(ctx context.Context, client *http.Client, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}

	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return ""
	}
	return findOpenGraphTitle(doc)
}

// ExtractOpenGraphTitle はHTML文字列から og:title を取り出します (テスト用途にも公開)
func ExtractOpenGraphTitle(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}
	return findOpenGraphTitle(doc)
}

// findOpenGraphTitle はノードツリーを辿って <meta property="og:title"> を探します
func findOpenGraphTitle(doc *html.Node) string {
	var title string
	var traverse func(node *html.Node) bool
	traverse = func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.Data == "meta" {
			var property, content string
			for _, attr := range node.Attr {
				switch strings.ToLower(attr.Key) {
				case "property":
					property = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if property == "og:title" {
				title = content
				return true
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if traverse(child) {
				return true
			}
		}
		return false
	}
	traverse(doc)
	return title
}
