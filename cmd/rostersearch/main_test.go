package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/islomar/rostersearch/internal/cli"
)

const asOf = "2026-10-15"

const rosterYAML = `people:
  - givenName: Ada
    familyName: Lovelace
    birthDate: 1990-12-10
    gender: FEMALE
    email: ada@example.com
  - givenName: Alan
    familyName: Turing
    birthDate: 2006-03-01
    gender: male
    email: alan@example.com
  - givenName: Tim
    familyName: Kid
    birthDate: 2014-05-05
    gender: MALE
    email: tim@example.com
`

const criteriaYAML = `criteria:
  - name: senior
    description: age 65 or over
    expression: age >= 65
  - name: female-adult
    lang: javascript
    script: |
      function test(p) { return p.gender === "FEMALE" && p.age >= 18 }
`

// runCLI runs the command line in-process and returns stdout, stderr, and exit code
func runCLI(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	exitCode = run(args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), exitCode
}

// writeFixture writes content to name in a temporary directory and returns its path
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestCLI_Help(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "--help")

	if exitCode != cli.ExitSuccess {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	for _, want := range []string{"rostersearch", "search", "criteria", "validate", "generate"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}

func TestCLI_Version(t *testing.T) {
	stdout, _, exitCode := runCLI(t, "version")

	if exitCode != cli.ExitSuccess {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stdout, "Version: dev") {
		t.Errorf("unexpected version output: %s", stdout)
	}
}

func TestCLI_Search(t *testing.T) {
	rosterPath := writeFixture(t, "people.yaml", rosterYAML)
	criteriaPath := writeFixture(t, "criteria.yaml", criteriaYAML)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "emails of draft eligible",
			args: []string{"search", "draft-eligible", "--roster", rosterPath, "--map", "email"},
			want: "alan@example.com\n",
		},
		{
			name: "names of drivers",
			args: []string{"search", "adult-driver", "--roster", rosterPath, "--map", "name"},
			want: "Ada Lovelace\nAlan Turing\n",
		},
		{
			name: "western profile by default",
			args: []string{"search", "pilot-eligible", "--roster", rosterPath},
			want: "Name: Ada Lovelace\nAge: 35  Gender: FEMALE\n",
		},
		{
			name: "eastern profile",
			args: []string{"search", "allPilots", "--roster", rosterPath, "--eastern"},
			want: "Name: Lovelace Ada\nAge: 35  Gender: FEMALE\n",
		},
		{
			name: "template",
			args: []string{"search", "adult-driver", "--roster", rosterPath, "--template", "{{familyName}} ({{age}})"},
			want: "Lovelace (35)\nTuring (20)\n",
		},
		{
			name: "script criterion from file",
			args: []string{"search", "female-adult", "--roster", rosterPath, "--criteria", criteriaPath, "--map", "email"},
			want: "ada@example.com\n",
		},
		{
			name: "expression criterion without match",
			args: []string{"search", "senior", "--roster", rosterPath, "--criteria", criteriaPath},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--as-of", asOf, "--quiet"}, tt.args...)
			stdout, stderr, exitCode := runCLI(t, args...)
			if exitCode != cli.ExitSuccess {
				t.Fatalf("expected exit code 0, got %d\nstderr: %s", exitCode, stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestCLI_SearchSummary(t *testing.T) {
	rosterPath := writeFixture(t, "people.yaml", rosterYAML)

	_, stderr, exitCode := runCLI(t, "--as-of", asOf, "search", "adult-driver", "--roster", rosterPath)
	if exitCode != cli.ExitSuccess {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(stderr, "2 of 3 matched adult-driver") {
		t.Errorf("expected summary on stderr, got: %s", stderr)
	}
}

func TestCLI_SearchSampleIsReproducible(t *testing.T) {
	args := []string{"--as-of", asOf, "--quiet", "search", "adult-driver", "--seed", "42", "--count", "30", "--map", "email"}

	first, _, exitCode := runCLI(t, args...)
	if exitCode != cli.ExitSuccess {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	second, _, _ := runCLI(t, args...)

	if first == "" {
		t.Fatal("expected matches in a 30 person sample")
	}
	if first != second {
		t.Errorf("same seed produced different output:\n%s\n---\n%s", first, second)
	}
}

func TestCLI_SearchErrors(t *testing.T) {
	rosterPath := writeFixture(t, "people.yaml", rosterYAML)
	badRoster := writeFixture(t, "bad.yaml", "people:\n  - birthDate: 2100-01-01\n    gender: MALE\n")
	brokenRoster := writeFixture(t, "broken.json", `{"people": [`)
	badCriteria := writeFixture(t, "criteria.yaml", "criteria:\n  - name: broken\n    expression: age >=\n")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{"unknown criterion", []string{"search", "canVote", "--roster", rosterPath}, cli.ExitUnknownName, "canVote"},
		{"unknown mapper", []string{"search", "adult-driver", "--roster", rosterPath, "--map", "shoe-size"}, cli.ExitUnknownName, "shoe-size"},
		{"future birth date", []string{"search", "adult-driver", "--roster", badRoster}, cli.ExitValidationError, "birth date is in the future"},
		{"roster parse error", []string{"search", "adult-driver", "--roster", brokenRoster}, cli.ExitParseError, "Parse errors"},
		{"bad expression", []string{"search", "broken", "--criteria", badCriteria}, cli.ExitValidationError, "broken"},
		{"missing roster", []string{"search", "adult-driver", "--roster", filepath.Join(t.TempDir(), "nope.json")}, cli.ExitParseError, "Parse errors"},
		{"bad template", []string{"search", "adult-driver", "--roster", rosterPath, "--template", "{{shoeSize}}"}, cli.ExitValidationError, "shoeSize"},
		{"map and eastern", []string{"search", "adult-driver", "--map", "email", "--eastern"}, cli.ExitRuntimeError, "eastern"},
		{"missing criterion", []string{"search"}, cli.ExitRuntimeError, "accepts 1 arg"},
		{"bad as-of", []string{"--as-of", "yesterday", "search", "adult-driver"}, cli.ExitValidationError, "--as-of"},
		{"bad log format", []string{"--log-format", "xml", "version"}, cli.ExitRuntimeError, "unknown log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, exitCode := runCLI(t, tt.args...)
			if exitCode != tt.wantCode {
				t.Errorf("expected exit code %d, got %d\nstderr: %s", tt.wantCode, exitCode, stderr)
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("expected stderr to contain %q, got: %s", tt.wantStderr, stderr)
			}
			if stdout != "" {
				t.Errorf("expected no results on failure, got %q", stdout)
			}
		})
	}
}

func TestCLI_Criteria(t *testing.T) {
	criteriaPath := writeFixture(t, "criteria.yaml", criteriaYAML)

	stdout, stderr, exitCode := runCLI(t, "--verbose", "criteria", "--criteria", criteriaPath)
	if exitCode != cli.ExitSuccess {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	for _, want := range []string{"NAME", "adult-driver", "allPilots", "alias of pilot-eligible", "senior", "age 65 or over", "female-adult", "Mappers:", "eastern-name"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected listing to contain %q:\n%s", want, stdout)
		}
	}
	if n := strings.Count(stderr, `"msg":"criteria loaded"`); n != 1 {
		t.Errorf("expected one criteria loaded log line, got %d:\n%s", n, stderr)
	}
}

func TestCLI_Validate(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode int
		wantOut  string
	}{
		{"valid criteria", "criteria.yaml", criteriaYAML, cli.ExitSuccess, "Criteria file is valid"},
		{"valid roster", "people.yaml", rosterYAML, cli.ExitSuccess, "Roster file is valid"},
		{"syntax error", "criteria.json", `{"criteria": [}`, cli.ExitParseError, ""},
		{"schema violation", "criteria.yaml", "criteria:\n  - description: no name\n    expression: age > 1\n", cli.ExitValidationError, ""},
		{"both expression and script", "criteria.yaml", "criteria:\n  - name: x\n    expression: age > 1\n    script: function test(p) { return true }\n", cli.ExitValidationError, ""},
		{"misspelled field", "criteria.yaml", "criteria:\n  - name: adult\n    expression: agee >= 18\n", cli.ExitValidationError, ""},
		{"uncompilable script", "criteria.yaml", "criteria:\n  - name: x\n    lang: javascript\n    script: var y = 1\n", cli.ExitValidationError, ""},
		{"unknown kind", "other.json", `{"connector": {}}`, cli.ExitValidationError, ""},
		{"bad gender", "people.json", `{"people": [{"birthDate": "2000-01-01", "gender": "robot"}]}`, cli.ExitValidationError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.file, tt.content)
			stdout, stderr, exitCode := runCLI(t, "--as-of", asOf, "validate", path)
			if exitCode != tt.wantCode {
				t.Errorf("expected exit code %d, got %d\nstderr: %s", tt.wantCode, exitCode, stderr)
			}
			if !strings.Contains(stdout, tt.wantOut) {
				t.Errorf("expected stdout to contain %q, got: %s", tt.wantOut, stdout)
			}
		})
	}
}

func TestCLI_GenerateThenSearch(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			stdout, stderr, exitCode := runCLI(t, "--as-of", asOf, "generate", "--count", "25", "--seed", "9", "--format", format)
			if exitCode != cli.ExitSuccess {
				t.Fatalf("generate failed with %d: %s", exitCode, stderr)
			}
			path := writeFixture(t, "people."+format, stdout)

			if _, stderr, exitCode := runCLI(t, "--as-of", asOf, "--quiet", "validate", path); exitCode != cli.ExitSuccess {
				t.Fatalf("generated roster did not validate (%d): %s", exitCode, stderr)
			}

			fromFile, _, exitCode := runCLI(t, "--as-of", asOf, "--quiet", "search", "adult-driver", "--roster", path, "--map", "email")
			if exitCode != cli.ExitSuccess {
				t.Fatalf("search failed with %d", exitCode)
			}
			fromSample, _, _ := runCLI(t, "--as-of", asOf, "--quiet", "search", "adult-driver", "--count", "25", "--seed", "9", "--map", "email")
			if fromFile != fromSample {
				t.Errorf("roster file and sample disagree:\n%s\n---\n%s", fromFile, fromSample)
			}
		})
	}
}

func TestCLI_GenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"generate", "--format", "toml"}},
		{"negative count", []string{"generate", "--count", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, exitCode := runCLI(t, tt.args...); exitCode != cli.ExitRuntimeError {
				t.Errorf("expected exit code %d, got %d", cli.ExitRuntimeError, exitCode)
			}
		})
	}
}
