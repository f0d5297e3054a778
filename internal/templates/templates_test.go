package templates

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bignellrp/portainer-api-action/internal/logger"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ErrorLevel, Pretty: false, Output: io.Discard})
}

func testData(stackFile string) Data {
	return Data{
		BaseURL:    "https://portainer.example.com",
		StackName:  "app",
		EndpointID: 2,
		StackFile:  stackFile,
		StackID:    "5",
	}
}

func TestEmitSubstitutesConfig(t *testing.T) {
	var out bytes.Buffer
	e := NewEmitter(&out, quietLogger())
	e.readFile = func(string) ([]byte, error) { return nil, os.ErrNotExist }

	e.Emit(testData("docker-compose.yml"))

	text := out.String()
	for _, want := range []string{
		"https://portainer.example.com/api/stacks",
		"https://portainer.example.com/api/stacks?type=2&method=string&endpointId=2",
		"https://portainer.example.com/api/stacks/create/standalone/string?endpointId=2",
		"https://portainer.example.com/api/stacks/5?endpointId=2",
		"https://portainer.example.com/api/stacks/5?external=true",
		`{Name: $name, StackFileContent: $content, EndpointId: $endpoint}`,
		`{stackFileContent: $content, prune: false}`,
		"docker-compose.yml",
		"$PORTAINER_API_KEY",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestEmitIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "docker-compose.yml")
	if err := os.WriteFile(file, []byte("services:\n  app:\n    image: nginx\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var first, second bytes.Buffer

	e1 := NewEmitter(&first, quietLogger())
	e1.Emit(testData(file))

	e2 := NewEmitter(&second, quietLogger())
	e2.Emit(testData(file))

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("emitter output differs between identical runs")
	}
}

func TestEmitInlinesStackFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "docker-compose.yml")
	if err := os.WriteFile(file, []byte("services: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	e := NewEmitter(&out, quietLogger())
	e.Emit(testData(file))

	text := out.String()
	if !strings.Contains(text, "Ready-to-paste create payload") {
		t.Errorf("inlined payload section missing\n%s", text)
	}
	if !strings.Contains(text, `"StackFileContent":"services: {}\n"`) {
		t.Errorf("stack file contents not inlined\n%s", text)
	}
}

func TestEmitMissingFileFallsBack(t *testing.T) {
	var out bytes.Buffer
	e := NewEmitter(&out, quietLogger())
	e.Emit(testData(filepath.Join(t.TempDir(), "absent.yml")))

	text := out.String()
	if strings.Contains(text, "Ready-to-paste") {
		t.Error("inlined payload emitted for a missing file")
	}
	// The jq construction lines still reference the file.
	if !strings.Contains(text, "absent.yml") {
		t.Errorf("fallback lines missing the file name\n%s", text)
	}
}

func TestEmitPlaceholderStackID(t *testing.T) {
	var out bytes.Buffer
	e := NewEmitter(&out, quietLogger())
	e.readFile = func(string) ([]byte, error) { return nil, os.ErrNotExist }

	d := testData("docker-compose.yml")
	d.StackID = ""
	e.Emit(d)

	if !strings.Contains(out.String(), "<stack-id>") {
		t.Error("placeholder stack id missing when no stack id configured")
	}
}

func TestEmitNeverPrintsCredential(t *testing.T) {
	var out bytes.Buffer
	e := NewEmitter(&out, quietLogger())
	e.readFile = func(string) ([]byte, error) { return nil, os.ErrNotExist }
	e.Emit(testData("docker-compose.yml"))

	// Emitted commands must reference the env var, never a literal key.
	if !strings.Contains(out.String(), `X-API-Key: $PORTAINER_API_KEY`) {
		t.Error("commands do not reference $PORTAINER_API_KEY")
	}
}
