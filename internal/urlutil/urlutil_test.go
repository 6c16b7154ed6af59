// internal/urlutil/urlutil_test.go
package urlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeVideoURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "正常系: watch形式のURL",
			in:   "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name: "正常系: 短縮URLはそのまま正規形",
			in:   "https://youtu.be/dQw4w9WgXcQ",
			want: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name: "正常系: shorts形式のURL",
			in:   "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			want: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name: "正常系: 埋め込み (/v/) 形式のURL",
			in:   "https://www.youtube.com/embed/v/dQw4w9WgXcQ",
			want: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name: "正常系: スキームなしのURL",
			in:   "www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name: "正常系: wwwなしのURL",
			in:   "youtube.com/watch?v=dQw4w9WgXcQ",
			want: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name: "正常系: 対象外のURLは変更されない",
			in:   "https://vimeo.com/12345",
			want: "https://vimeo.com/12345",
		},
		{
			name: "正常系: 空文字列は変更されない",
			in:   "",
			want: "",
		},
		{
			name: "正常系: URLでない文字列も変更されない",
			in:   "not a url",
			want: "not a url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalizeVideoURL(tt.in))
		})
	}
}

// 同じ動画を指す3つの表記が同一の正規形に畳み込まれること
func TestCanonicalizeVideoURL_EquivalentForms(t *testing.T) {
	forms := []string{
		"https://www.youtube.com/watch?v=abc-123_XY",
		"https://youtu.be/abc-123_XY",
		"https://www.youtube.com/shorts/abc-123_XY",
	}
	for _, form := range forms {
		assert.Equal(t, "https://youtu.be/abc-123_XY", CanonicalizeVideoURL(form), form)
	}
}

// 正規化は冪等であること
func TestCanonicalizeVideoURL_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://vimeo.com/12345",
		"",
	}
	for _, in := range inputs {
		once := CanonicalizeVideoURL(in)
		assert.Equal(t, once, CanonicalizeVideoURL(once), in)
	}
}

func TestPlatformName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "正常系: youtu.be",
			in:   "https://youtu.be/dQw4w9WgXcQ",
			want: "youtu.be",
		},
		{
			name: "正常系: サブドメインは落とされる",
			in:   "https://www.youtube.com/watch?v=x",
			want: "youtube.com",
		},
		{
			name: "正常系: ポート番号は無視される",
			in:   "http://example.com:8080/page",
			want: "example.com",
		},
		{
			name: "正常系: スキームなしでもホストを解決する",
			in:   "vimeo.com/12345",
			want: "vimeo.com",
		},
		{
			name: "正常系: ラベルが1つだけのホストは空文字",
			in:   "http://localhost/page",
			want: "",
		},
		{
			name: "異常系: 空文字列",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlatformName(tt.in))
		})
	}
}

func TestExtractOpenGraphTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "正常系: og:titleを抽出する",
			html: `<html><head><meta property="og:title" content="My Video Title"/></head><body></body></html>`,
			want: "My Video Title",
		},
		{
			name: "正常系: 属性の順序が逆でも抽出する",
			html: `<html><head><meta content="Reversed" property="og:title"/></head></html>`,
			want: "Reversed",
		},
		{
			name: "正常系: og:titleが無ければ空文字列",
			html: `<html><head><title>Page Title</title></head><body></body></html>`,
			want: "",
		},
		{
			name: "正常系: 壊れたHTMLでも落ちない",
			html: `<html><head><div><p>unclosed`,
			want: "",
		},
		{
			name: "正常系: 空のドキュメント",
			html: ``,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractOpenGraphTitle(strings.NewReader(tt.html))
			assert.Equal(t, tt.want, got)
		})
	}
}
