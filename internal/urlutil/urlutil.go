// internal/urlutil/urlutil.go
// URLの正規化まわりの純粋関数群。ネットワークアクセスはしない。
package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// YouTubeの各種URL形式 (watch?v=, /v/, /shorts/, 短縮ドメイン) にマッチし、
// 動画IDを取り出すためのパターン。
var youtubePattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:.*v=|.*/v/|.*shorts/)|youtu\.be/)([\w-]+)`)

// CanonicalizeVideoURL はURLを正規形に変換します。
// YouTube系のURLなら https://youtu.be/<id> の短縮形に書き換え、
// それ以外はそのまま返す。失敗モードは無く、常に文字列を返す。
func CanonicalizeVideoURL(link string) string {
	m := youtubePattern.FindStringSubmatch(link)
	if m != nil {
		return fmt.Sprintf("https://youtu.be/%s", m[1])
	}
	return link
}

// PlatformName はホスト名の末尾2ラベルからプラットフォーム名を導出します。
// ポート番号は除去する。ラベルが2つ未満なら空文字。
// 例: "https://www.youtube.com/watch?v=x" -> "youtube.com"
func PlatformName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := parsed.Host
	if host == "" {
		// スキーム無しのURL ("youtu.be/abc" など) へのフォールバック
		host = strings.SplitN(parsed.Path, "/", 2)[0]
	}
	// ポートを除去
	host = strings.SplitN(host, ":", 2)[0]

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "." + parts[len(parts)-1]
	}
	return ""
}
