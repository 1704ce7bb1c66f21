package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type operation struct {
	Parameters []struct {
		Name   string `json:"name"`
		In     string `json:"in"`
		Schema *struct {
			Ref string `json:"$ref"`
		} `json:"schema"`
	} `json:"parameters"`
	Responses map[string]json.RawMessage `json:"responses"`
}

type document struct {
	Paths       map[string]map[string]operation `json:"paths"`
	Definitions map[string]json.RawMessage      `json:"definitions"`
}

func readDocument(t *testing.T) (document, string) {
	t.Helper()
	raw := SwaggerInfo.ReadDoc()
	var doc document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc, raw
}

var (
	routeLine = regexp.MustCompile(`^// @Router\s+(\S+)\s+\[(\w+)\]`)
	bodyParam = regexp.MustCompile(`^// @Param\s+\w+\s+body\s+(\w+)`)
)

type annotated struct {
	path, method, body string
}

// handlerRoutes collects the @Router and body @Param annotations of every
// handler, keyed by the comment block they appear in.
func handlerRoutes(t *testing.T) []annotated {
	t.Helper()
	files, err := filepath.Glob("../internal/handler/*.go")
	require.NoError(t, err)

	var routes []annotated
	for _, f := range files {
		if strings.HasSuffix(f, "_test.go") {
			continue
		}
		data, err := os.ReadFile(f)
		require.NoError(t, err)

		var body string
		for _, line := range strings.Split(string(data), "\n") {
			if m := bodyParam.FindStringSubmatch(line); m != nil {
				body = m[1]
			}
			if m := routeLine.FindStringSubmatch(line); m != nil {
				routes = append(routes, annotated{path: m[1], method: m[2], body: body})
				body = ""
			}
		}
	}
	require.NotEmpty(t, routes)
	return routes
}

func TestDocumentCoversEveryAnnotatedRoute(t *testing.T) {
	doc, _ := readDocument(t)

	for _, r := range handlerRoutes(t) {
		op, ok := doc.Paths[r.path][r.method]
		if !assert.True(t, ok, "%s %s missing", r.method, r.path) {
			continue
		}
		assert.NotEmpty(t, op.Responses, "%s %s has no responses", r.method, r.path)
		if r.body == "" {
			continue
		}

		var ref string
		for _, p := range op.Parameters {
			if p.In == "body" && p.Schema != nil {
				ref = p.Schema.Ref
			}
		}
		assert.Equal(t, "#/definitions/handler."+r.body, ref, "%s %s body", r.method, r.path)
	}
}

func TestDocumentReferencesResolve(t *testing.T) {
	doc, raw := readDocument(t)

	refs := regexp.MustCompile(`"#/definitions/([^"]+)"`).FindAllStringSubmatch(raw, -1)
	require.NotEmpty(t, refs)
	for _, m := range refs {
		assert.Contains(t, doc.Definitions, m[1])
	}
}

func TestPostResponseNestsAuthor(t *testing.T) {
	doc, _ := readDocument(t)

	var post struct {
		Properties map[string]struct {
			Ref string `json:"$ref"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(doc.Definitions["handler.PostResponse"], &post))
	assert.Equal(t, "#/definitions/handler.UserSummaryResponse", post.Properties["author"].Ref)
}
