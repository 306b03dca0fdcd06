package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skillNames(matches []Match) []string {
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Skill)
	}
	return names
}

func TestDefaultTaxonomy(t *testing.T) {
	tax := Default()
	require.Equal(t, 21, tax.Len())

	skills := tax.Skills()
	assert.Equal(t, "Python", skills[0].Name)
	assert.Equal(t, []string{"python", "py"}, skills[0].Aliases)
	assert.Equal(t, "API Development", skills[20].Name)

	skills[0].Aliases[0] = "mutated"
	assert.Equal(t, "python", tax.Skills()[0].Aliases[0])
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tax := Default()

	tests := []struct {
		name   string
		text   string
		want   []string
		phrase map[string]string
	}{
		{
			name:   "orders by first occurrence",
			text:   "Worked with Docker and PYTHON, later python again",
			want:   []string{"Docker", "Python"},
			phrase: map[string]string{"Python": "PYTHON"},
		},
		{
			name: "phrase boundaries",
			text: "javascript developer, typescript fan, happy user",
			want: []string{"JavaScript"},
		},
		{
			name:   "punctuated aliases",
			text:   "C++, scikit-learn; k8s.",
			want:   []string{"C++", "Data Science", "Kubernetes"},
			phrase: map[string]string{"Data Science": "scikit-learn"},
		},
		{
			name: "dotted names stay whole",
			text: "Built APIs in Node.js, ran setup.py install, see cv.pdf",
			want: []string{},
		},
		{
			name:   "trailing full stop",
			text:   "Deployed on k8s. Wrote python.",
			want:   []string{"Kubernetes", "Python"},
			phrase: map[string]string{"Kubernetes": "k8s", "Python": "python"},
		},
		{
			name:   "multi word aliases",
			text:   "Built a REST  API with microservices and did data analysis",
			want:   []string{"API Development", "Data Analysis"},
			phrase: map[string]string{"API Development": "REST  API"},
		},
		{
			name:   "earliest alias wins",
			text:   "GCP then AWS",
			want:   []string{"Cloud Computing"},
			phrase: map[string]string{"Cloud Computing": "GCP"},
		},
		{
			name: "no match",
			text: "Gardening and cooking",
			want: []string{},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tax.Match(tt.text)
			assert.Equal(t, tt.want, skillNames(got))
			for _, m := range got {
				assert.Equal(t, 1.0, m.Confidence)
				if phrase, ok := tt.phrase[m.Skill]; ok {
					assert.Equal(t, phrase, m.Phrase)
				}
			}
		})
	}
}

func TestMatchIsIdempotent(t *testing.T) {
	tax := Default()
	text := "Python, SQL, Postgres, Git, Linux, Spark, ETL and some NLP"

	first := tax.Match(text)
	second := tax.Match(text)
	assert.Equal(t, first, second)
	assert.Len(t, first, 8)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New([]Skill{{Name: " ", Aliases: []string{"x"}}})
	assert.Error(t, err)

	_, err = New([]Skill{{Name: "Go", Aliases: []string{"  "}}})
	assert.Error(t, err)

	_, err = New([]Skill{{Name: "Go", Aliases: []string{"go"}}, {Name: "Go", Aliases: []string{"golang"}}})
	assert.Error(t, err)

	tax, err := New([]Skill{{Name: "Go", Aliases: []string{"Go", "go", "Golang"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "golang"}, tax.Skills()[0].Aliases)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "skills.yaml")
	require.NoError(t, os.WriteFile(valid, []byte(`skills:
  - name: Go
    aliases: [go, golang]
  - name: Rust
    aliases:
      - rust
`), 0o600))

	tax, err := LoadFile(valid)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust", "Go"}, skillNames(tax.Match("Rust and Golang")))

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte(`skills:
  - name: Go
    aliases: go
`), 0o600))

	_, err = LoadFile(invalid)
	assert.ErrorContains(t, err, "invalid taxonomy")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("skills: [\n"))
	assert.ErrorContains(t, err, "decode yaml")
}
