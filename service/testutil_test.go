package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/dexstruct/domain"
)

// sampleJSON holds an if/else method, a pretest loop and a method with a
// dangling edge
const sampleJSON = `{
  "source": "Sample.class",
  "methods": [
    {
      "name": "choose",
      "blocks": [
        {"offset": 0, "instructions": [{"kind": "branch", "text": "a"}], "edges": [{"target": 20}, {"target": 10}]},
        {"offset": 10, "instructions": [{"text": "B()"}], "edges": [{"target": 30}]},
        {"offset": 20, "instructions": [{"text": "C()"}], "edges": [{"target": 30}]},
        {"offset": 30, "instructions": [{"kind": "return", "text": "return"}]}
      ]
    },
    {
      "name": "count",
      "blocks": [
        {"offset": 0, "instructions": [{"kind": "branch", "text": "i < n"}], "edges": [{"target": 20}, {"target": 10}], "loop": {"kind": "pretest"}},
        {"offset": 10, "instructions": [{"text": "Body()"}], "edges": [{"target": 0}]},
        {"offset": 20, "instructions": [{"kind": "return", "text": "return"}]}
      ]
    },
    {
      "name": "broken",
      "blocks": [
        {"offset": 0, "instructions": [{"text": "x()"}], "edges": [{"target": 99}]}
      ]
    }
  ]
}`

const chooseSource = `choose {
    if (a) {
        B();
    } else {
        C();
    }
    return;
}
`

const countSource = `count {
    while (i < n) {
        Body();
    }
    return;
}
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleDocument(t *testing.T) *domain.GraphDocument {
	t.Helper()
	doc, err := DecodeDocument([]byte(sampleJSON), DocumentJSON)
	require.NoError(t, err)
	return doc
}
