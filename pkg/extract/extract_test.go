package extract_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/kevin-biot/mcp-memory/pkg/extract"
)

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

func TestTags(t *testing.T) {
	tags := extract.Tags("Pod CrashLoopBackOff in prod")

	gt.True(t, hasTag(tags, "pod")).Describe("expected 'pod'")
	gt.True(t, hasTag(tags, "crash")).Describe("expected 'crash'")
	gt.True(t, hasTag(tags, "prod")).Describe("expected 'prod'")
}

func TestTagsDeterministic(t *testing.T) {
	input := "Deployment failed: OOM killed container in staging cluster"
	first := extract.Tags(input)
	second := extract.Tags(input)
	gt.Equal(t, first, second)

	gt.True(t, hasTag(first, "deployment"))
	gt.True(t, hasTag(first, "oom"))
	gt.True(t, hasTag(first, "container"))
	gt.True(t, hasTag(first, "staging"))
}

func TestTagsNoMatch(t *testing.T) {
	gt.A(t, extract.Tags("hello world")).Length(0)
}

func TestContext(t *testing.T) {
	tokens := extract.Context(
		"The API at https://api.example.com/v1 keeps timing out",
		"Check /var/log/app/error.log and the MAX_RETRIES constant for api.example.com",
	)

	gt.True(t, hasTag(tokens, "https://api.example.com/v1")).Describe("url token")
	gt.True(t, hasTag(tokens, "/var/log/app/error.log")).Describe("path token")
	gt.True(t, hasTag(tokens, "MAX_RETRIES")).Describe("constant token")
	gt.True(t, hasTag(tokens, "api.example.com")).Describe("dotted name token")
}

func TestContextLengthBounds(t *testing.T) {
	// Tokens shorter than 4 characters are dropped.
	tokens := extract.Context("see a.b", "")
	gt.True(t, !hasTag(tokens, "a.b"))
}

func TestContextDeduplicates(t *testing.T) {
	tokens := extract.Context("api.example.com api.example.com", "api.example.com")
	count := 0
	for _, tok := range tokens {
		if tok == "api.example.com" {
			count++
		}
	}
	gt.Equal(t, count, 1)
}

func TestMerge(t *testing.T) {
	merged := extract.Merge([]string{"pod", "custom"}, []string{"crash", "pod"})
	gt.Equal(t, merged, []string{"pod", "custom", "crash"})

	gt.A(t, extract.Merge(nil, nil)).Length(0)
}
