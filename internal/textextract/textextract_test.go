package textextract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPlainText(t *testing.T) {
	t.Parallel()

	e := New(nil)

	tests := []struct {
		name     string
		data     []byte
		filename string
		want     string
	}{
		{name: "txt", data: []byte("Jane Doe\nPython"), filename: "cv.txt", want: "Jane Doe\nPython"},
		{name: "markdown upper case extension", data: []byte("# Jane"), filename: "CV.MD", want: "# Jane"},
		{name: "invalid utf8 replaced", data: []byte("ab\xffcd"), filename: "cv.txt", want: "ab�cd"},
		{name: "unknown extension best effort", data: []byte("skills: go"), filename: "cv.rtf", want: "skills: go"},
		{name: "no extension", data: []byte("plain"), filename: "resume", want: "plain"},
		{name: "windows newlines", data: []byte("a\r\nb\rc"), filename: "cv.txt", want: "a\nb\nc"},
		{name: "empty", data: nil, filename: "cv.txt", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, e.Extract(tt.data, tt.filename))
		})
	}
}

func TestExtractInvalidPDFReturnsEmpty(t *testing.T) {
	t.Parallel()

	e := New(nil)
	assert.Equal(t, "", e.Extract([]byte("definitely not a pdf"), "cv.pdf"))
	assert.Equal(t, "", e.Extract(nil, "cv.PDF"))
	assert.Equal(t, "", e.Extract([]byte("%PDF-1.4\n%%EOF"), "cv.pdf"))
}

func TestExtractHTML(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>ignored</title><style>p{}</style></head>
<body><h1>Jane Doe</h1><script>alert(1)</script><p>Skills:   Python,
Docker</p><ul><li>Kubernetes</li></ul></body></html>`

	got := New(nil).Extract([]byte(page), "cv.html")

	assert.Equal(t, "Jane Doe\nSkills: Python, Docker\nKubernetes", got)
	assert.False(t, strings.Contains(got, "alert"))
	assert.False(t, strings.Contains(got, "ignored"))
}
