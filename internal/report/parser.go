package report

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parser deserializes a report file back into structured data.
type Parser interface {
	Parse(data []byte) (*Report, error)
}

var errNoCaseID = errors.New("report has no case id")

// JSONParser parses a JSON-encoded Report.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}
	if r.CaseID == "" {
		return nil, fmt.Errorf("not a valid forensim report: %w", errNoCaseID)
	}
	return &r, nil
}

// MarkdownParser parses a Markdown report from its embedded payload. The
// payload must be of a supported version and agree with the visible header,
// so a report whose body was edited by hand is refused rather than silently
// shown with stale data.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) (*Report, error) {
	content := string(data)

	version, err := readVersion(content)
	if err != nil {
		return nil, fmt.Errorf("not a valid forensim report: %w", err)
	}
	if version > Version {
		return nil, fmt.Errorf("report version %d is newer than this forensim supports (%d)", version, Version)
	}

	start := strings.Index(content, dataPrefix)
	if start == -1 {
		return nil, fmt.Errorf("not a valid forensim report: missing data payload")
	}
	start += len(dataPrefix)
	end := strings.Index(content[start:], dataSuffix)
	if end == -1 {
		return nil, fmt.Errorf("not a valid forensim report: malformed data payload")
	}
	encoded := content[start : start+end]

	jsonBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("not a valid forensim report: corrupted base64 payload: %w", err)
	}

	var r Report
	if err := json.Unmarshal(jsonBytes, &r); err != nil {
		return nil, fmt.Errorf("not a valid forensim report: failed to parse embedded JSON: %w", err)
	}
	if r.CaseID == "" {
		return nil, fmt.Errorf("not a valid forensim report: %w", errNoCaseID)
	}
	if err := checkHeader(content[start+end:], &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// readVersion returns the layout version named by the sentinel comment.
func readVersion(content string) (int, error) {
	i := strings.Index(content, versionPrefix)
	if i == -1 {
		return 0, errors.New("missing version sentinel")
	}
	rest := content[i+len(versionPrefix):]
	j := strings.Index(rest, dataSuffix)
	if j == -1 {
		return 0, errors.New("malformed version sentinel")
	}
	v, err := strconv.Atoi(strings.TrimSpace(rest[:j]))
	if err != nil || v < 1 {
		return 0, fmt.Errorf("malformed version sentinel %q", rest[:j])
	}
	return v, nil
}

// checkHeader compares the title and case lines of the Markdown body with
// the payload. Missing lines are tolerated; differing ones are not.
func checkHeader(body string, r *Report) error {
	var title, caseID string
	var sawTitle, sawCase bool
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() && !(sawTitle && sawCase) {
		line := strings.TrimRight(sc.Text(), " \r")
		switch {
		case !sawTitle && strings.HasPrefix(line, titlePrefix):
			title, sawTitle = strings.TrimPrefix(line, titlePrefix), true
		case !sawCase && strings.HasPrefix(line, casePrefix):
			caseID, sawCase = strings.TrimPrefix(line, casePrefix), true
		}
	}
	if sawTitle && title != strings.TrimRight(r.Title, " ") {
		return fmt.Errorf("report body does not match its payload: title %q, payload %q", title, r.Title)
	}
	if sawCase && caseID != strings.TrimRight(r.CaseID, " ") {
		return fmt.Errorf("report body does not match its payload: case %q, payload %q", caseID, r.CaseID)
	}
	return nil
}
