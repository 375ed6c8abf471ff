package report

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestMarkdownParser_PlainMarkdownWithoutSentinel(t *testing.T) {
	p := &MarkdownParser{}

	plainMarkdown := `# Some Document

This is just a regular Markdown file with no report sentinel.

## Section

- item 1
`
	_, err := p.Parse([]byte(plainMarkdown))
	if err == nil {
		t.Fatal("expected error for plain Markdown without sentinel, got nil")
	}
	if !strings.Contains(err.Error(), "not a valid forensim report") {
		t.Errorf("expected error to contain 'not a valid forensim report', got: %q", err.Error())
	}
}

func TestMarkdownParser_CorruptedBase64Payload(t *testing.T) {
	p := &MarkdownParser{}

	corrupted := versionSentinel + "\n" + dataPrefix + "!!!not-valid-base64!!!" + dataSuffix + "\n\n# Case Report\n"
	_, err := p.Parse([]byte(corrupted))
	if err == nil {
		t.Fatal("expected error for corrupted base64 payload, got nil")
	}
	if !strings.Contains(err.Error(), "corrupted base64 payload") {
		t.Errorf("unexpected error: %q", err.Error())
	}
}

func TestMarkdownParser_MissingDataPayload(t *testing.T) {
	p := &MarkdownParser{}

	noData := versionSentinel + "\n\n# Case Report\n\nSome content but no data payload.\n"
	_, err := p.Parse([]byte(noData))
	if err == nil {
		t.Fatal("expected error when data payload is missing, got nil")
	}
	if !strings.Contains(err.Error(), "missing data payload") {
		t.Errorf("unexpected error: %q", err.Error())
	}
}

func TestMarkdownParser_ValidBase64ButInvalidJSON(t *testing.T) {
	p := &MarkdownParser{}

	badJSON := base64.StdEncoding.EncodeToString([]byte("this is not json {{{"))
	content := versionSentinel + "\n" + dataPrefix + badJSON + dataSuffix + "\n\n# Case Report\n"

	_, err := p.Parse([]byte(content))
	if err == nil {
		t.Fatal("expected error for valid base64 but invalid embedded JSON, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse embedded JSON") {
		t.Errorf("unexpected error: %q", err.Error())
	}
}

func TestJSONParser_MalformedJSON(t *testing.T) {
	p := &JSONParser{}

	cases := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"truncated object", `{"case_id": {`},
		{"plain text", "not json at all"},
		{"array instead of object", `[1, 2, 3]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tc.input))
			if err == nil {
				t.Fatalf("expected error for malformed JSON input %q, got nil", tc.input)
			}
			if !strings.Contains(err.Error(), "failed to parse JSON report") {
				t.Errorf("expected descriptive error, got: %q", err.Error())
			}
		})
	}
}

func renderSample(t *testing.T) string {
	t.Helper()
	r := &Report{ID: "r-1", CaseID: "phishing-attack-001", Title: "Suspicious Email Campaign - ABC Corp"}
	data, err := (&MarkdownRenderer{}).Render(r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(data)
}

func TestMarkdownParser_EditedHeader(t *testing.T) {
	md := renderSample(t)
	if _, err := (&MarkdownParser{}).Parse([]byte(md)); err != nil {
		t.Fatalf("unedited report: %v", err)
	}

	edits := map[string][2]string{
		"title": {"# Case Report: Suspicious Email Campaign - ABC Corp", "# Case Report: Something Else"},
		"case":  {"- Case: phishing-attack-001", "- Case: ransomware-incident-001"},
	}
	for name, e := range edits {
		t.Run(name, func(t *testing.T) {
			edited := strings.Replace(md, e[0], e[1], 1)
			if edited == md {
				t.Fatalf("header line %q not found in:\n%s", e[0], md)
			}
			_, err := (&MarkdownParser{}).Parse([]byte(edited))
			if err == nil || !strings.Contains(err.Error(), "does not match its payload") {
				t.Errorf("expected mismatch error, got %v", err)
			}
		})
	}
}

func TestMarkdownParser_Version(t *testing.T) {
	md := renderSample(t)

	newer := strings.Replace(md, versionSentinel, versionPrefix+"2"+dataSuffix, 1)
	_, err := (&MarkdownParser{}).Parse([]byte(newer))
	if err == nil || !strings.Contains(err.Error(), "newer than this forensim supports") {
		t.Errorf("newer version: got %v", err)
	}

	garbled := strings.Replace(md, versionSentinel, versionPrefix+"one"+dataSuffix, 1)
	_, err = (&MarkdownParser{}).Parse([]byte(garbled))
	if err == nil || !strings.Contains(err.Error(), "malformed version sentinel") {
		t.Errorf("garbled version: got %v", err)
	}
}

func TestParsersRequireCaseID(t *testing.T) {
	if _, err := (&JSONParser{}).Parse([]byte(`{"title": "no id"}`)); err == nil || !strings.Contains(err.Error(), "no case id") {
		t.Errorf("JSON: got %v", err)
	}

	payload := base64.StdEncoding.EncodeToString([]byte(`{"title": "no id"}`))
	md := versionSentinel + "\n" + dataPrefix + payload + dataSuffix + "\n"
	if _, err := (&MarkdownParser{}).Parse([]byte(md)); err == nil || !strings.Contains(err.Error(), "no case id") {
		t.Errorf("Markdown: got %v", err)
	}
}
