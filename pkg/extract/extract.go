// Package extract derives categorical tags and contextual tokens from raw
// text via fixed pattern batteries. It is pure and deterministic; the
// patterns are heuristics, not guarantees of precision or recall.
package extract

import "regexp"

// tagPattern pairs a lowercase tag label with the pattern that triggers it.
// Each pattern is evaluated independently against the input.
type tagPattern struct {
	label   string
	pattern *regexp.Regexp
}

var tagPatterns = []tagPattern{
	// container / orchestration vocabulary
	{"pod", regexp.MustCompile(`(?i)\bpods?\b|\bcrashloop`)},
	{"container", regexp.MustCompile(`(?i)containers?`)},
	{"docker", regexp.MustCompile(`(?i)docker`)},
	{"kubernetes", regexp.MustCompile(`(?i)kubernetes|\bk8s\b|kubectl`)},
	{"deployment", regexp.MustCompile(`(?i)deployments?\b`)},
	{"node", regexp.MustCompile(`(?i)\bnodes?\b`)},
	{"cluster", regexp.MustCompile(`(?i)clusters?`)},

	// resource kinds
	{"service", regexp.MustCompile(`(?i)\bservices?\b|\bsvc\b`)},
	{"ingress", regexp.MustCompile(`(?i)ingress`)},
	{"configmap", regexp.MustCompile(`(?i)config\s?maps?`)},
	{"secret", regexp.MustCompile(`(?i)secrets?`)},
	{"volume", regexp.MustCompile(`(?i)volumes?|\bpvc\b`)},
	{"namespace", regexp.MustCompile(`(?i)namespaces?`)},

	// resource dimensions
	{"cpu", regexp.MustCompile(`(?i)\bcpu\b`)},
	{"memory", regexp.MustCompile(`(?i)\bmemory\b|\bram\b`)},
	{"disk", regexp.MustCompile(`(?i)\bdisk\b|storage`)},
	{"network", regexp.MustCompile(`(?i)network|\bdns\b`)},

	// failure vocabulary
	{"crash", regexp.MustCompile(`(?i)crash`)},
	{"error", regexp.MustCompile(`(?i)\berrors?\b`)},
	{"failure", regexp.MustCompile(`(?i)\bfail(?:s|ed|ure|ing)?\b`)},
	{"oom", regexp.MustCompile(`(?i)\boom\b|out\s?of\s?memory`)},
	{"timeout", regexp.MustCompile(`(?i)time\s?outs?`)},
	{"panic", regexp.MustCompile(`(?i)panic`)},

	// lifecycle verbs
	{"restart", regexp.MustCompile(`(?i)restart`)},
	{"deploy", regexp.MustCompile(`(?i)\bdeploy(?:s|ed|ing)?\b`)},
	{"scale", regexp.MustCompile(`(?i)\bscal(?:e|es|ed|ing)\b`)},
	{"rollback", regexp.MustCompile(`(?i)roll\s?back`)},
	{"upgrade", regexp.MustCompile(`(?i)upgrad(?:e|es|ed|ing)`)},

	// environment tiers
	{"dev", regexp.MustCompile(`(?i)\bdev(?:elopment)?\b`)},
	{"test", regexp.MustCompile(`(?i)\btest(?:ing)?\b`)},
	{"staging", regexp.MustCompile(`(?i)\bstag(?:e|ing)\b`)},
	{"prod", regexp.MustCompile(`(?i)\bprod(?:uction)?\b`)},
}

var contextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://[^\s"']+`),               // URL-like
	regexp.MustCompile(`(?:/[\w.@-]+){2,}`),               // path-like
	regexp.MustCompile(`\b[a-z0-9-]+(?:\.[a-z0-9-]+)+\b`), // dotted resource names
	regexp.MustCompile(`\b[A-Z][A-Z0-9_]{3,}\b`),          // uppercase constants
}

const (
	minContextLen = 4
	maxContextLen = 99
)

// Tags returns the lowercase labels whose patterns match the text,
// in table order, deduplicated. Identical input yields identical output.
func Tags(text string) []string {
	var tags []string
	seen := map[string]struct{}{}
	for _, tp := range tagPatterns {
		if _, ok := seen[tp.label]; ok {
			continue
		}
		if tp.pattern.MatchString(text) {
			tags = append(tags, tp.label)
			seen[tp.label] = struct{}{}
		}
	}
	return tags
}

// Context scans the concatenated exchange for path-like, URL-like,
// dotted-name, and constant-like tokens between 4 and 99 characters,
// deduplicated in order of first appearance.
func Context(userMessage, assistantResponse string) []string {
	text := userMessage + "\n" + assistantResponse

	var tokens []string
	seen := map[string]struct{}{}
	for _, p := range contextPatterns {
		for _, m := range p.FindAllString(text, -1) {
			if len(m) < minContextLen || len(m) > maxContextLen {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			tokens = append(tokens, m)
			seen[m] = struct{}{}
		}
	}
	return tokens
}

// Merge combines caller-supplied values with extracted ones, keeping the
// caller's values first and dropping duplicates.
func Merge(supplied, extracted []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range append(append([]string{}, supplied...), extracted...) {
		if _, ok := seen[v]; ok {
			continue
		}
		out = append(out, v)
		seen[v] = struct{}{}
	}
	return out
}
