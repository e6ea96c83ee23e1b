package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

const cliStats = `{
	"hash": "0a1b2c",
	"publicPath": "/static/",
	"assets": [{"name": "manifest.js"}, {"name": "app.js"}],
	"assetsByChunkName": {"manifest": ["manifest.js", "manifest.js.map"], "app": "app.js"},
	"entrypoints": {"main": {"chunks": ["manifest", "app"], "assets": ["manifest.js", "app.js"]}},
	"chunks": [{"id": "app", "files": ["app.js"], "siblings": ["manifest"]}]
}`

func testApp(out *bytes.Buffer) *cli.App {
	app := newApp()
	app.Writer = out
	app.ErrWriter = out
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func setupBuild(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	for name, content := range map[string]string{
		"stats.json":       cliStats,
		"dist/manifest.js": "webpackJsonp=[];",
		"dist/app.js":      "app();",
		"index.html":       "<html><head></head><body></body></html>",
	} {
		fn := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fn), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fn, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "build"), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestWriteInjectHistory(t *testing.T) {
	dir := setupBuild(t)
	historyDB := filepath.Join(dir, "history.db")
	var out bytes.Buffer

	err := testApp(&out).Run([]string{"assets-writer", "--quiet", "write",
		"--stats", filepath.Join(dir, "stats.json"),
		"--assets", filepath.Join(dir, "dist"),
		"--path", filepath.Join(dir, "build"),
		"--history-db", historyDB,
	})
	if err != nil {
		t.Fatalf("write error = %v\n%s", err, out.String())
	}

	manifestPath := filepath.Join(dir, "build", "assets.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if !strings.Contains(string(data), `"manifest": "webpackJsonp=[];"`) {
		t.Errorf("manifest source not inlined:\n%s", data)
	}

	out.Reset()
	err = testApp(&out).Run([]string{"assets-writer", "inject",
		"--manifest", manifestPath,
		"--html", filepath.Join(dir, "index.html"),
		"--entry", "main",
	})
	if err != nil {
		t.Fatalf("inject error = %v", err)
	}
	if !strings.Contains(out.String(), `<script src="/static/app.js"></script>`) {
		t.Errorf("inject output missing app script:\n%s", out.String())
	}
	if strings.Contains(out.String(), `src="/static/manifest.js"`) {
		t.Errorf("inject output references the inlined manifest:\n%s", out.String())
	}

	out.Reset()
	if err := testApp(&out).Run([]string{"assets-writer", "history", "--history-db", historyDB}); err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out.String(), "Total: 1 emits") {
		t.Errorf("history output:\n%s", out.String())
	}

	out.Reset()
	if err := testApp(&out).Run([]string{"assets-writer", "history",
		"--history-db", historyDB,
		"--path", filepath.Join(dir, "build"),
		"show",
	}); err != nil {
		t.Fatalf("history show error = %v", err)
	}
	if !strings.Contains(out.String(), "Build hash:  0a1b2c") {
		t.Errorf("history show output:\n%s", out.String())
	}
}

func TestWriteNamesOnlyFromConfigFile(t *testing.T) {
	dir := setupBuild(t)
	cfgPath := filepath.Join(dir, "assets-writer.yaml")
	cfg := "path: " + filepath.Join(dir, "build") + "\n" +
		"filename: names.json\n" +
		"asset_names_only: true\n" +
		"stats: " + filepath.Join(dir, "stats.json") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := testApp(&out).Run([]string{"assets-writer", "-q", "--config", cfgPath, "write"}); err != nil {
		t.Fatalf("write error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "build", "names.json"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "[\n\t\"/static/manifest.js\",\n\t\"/static/app.js\"\n]"; string(data) != want {
		t.Errorf("names.json = %q, want %q", data, want)
	}
}

func TestWriteMissingOutputDirectoryFails(t *testing.T) {
	dir := setupBuild(t)

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"assets-writer", "-q", "write",
		"--stats", filepath.Join(dir, "stats.json"),
		"--assets", filepath.Join(dir, "dist"),
		"--path", filepath.Join(dir, "nope"),
	})
	exit, ok := err.(cli.ExitCoder)
	if !ok || exit.ExitCode() != 1 {
		t.Fatalf("write error = %v, want exit code 1", err)
	}
}

func TestHistoryRequiresDatabase(t *testing.T) {
	t.Setenv("ASSETS_WRITER_HISTORY_DB", "")

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"assets-writer", "history"})
	exit, ok := err.(cli.ExitCoder)
	if !ok || exit.ExitCode() != 2 {
		t.Fatalf("history error = %v, want exit code 2", err)
	}
	if !strings.Contains(err.Error(), "--history-db") {
		t.Errorf("history error = %q, want a hint about --history-db", err)
	}
}

func TestHistoryShowLatestForOutputPath(t *testing.T) {
	dir := setupBuild(t)
	historyDB := filepath.Join(dir, "history.db")

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"assets-writer", "-q", "write",
		"--stats", filepath.Join(dir, "stats.json"),
		"--assets", filepath.Join(dir, "dist"),
		"--path", filepath.Join(dir, "build"),
		"--history-db", historyDB,
	})
	if err != nil {
		t.Fatalf("write error = %v", err)
	}

	err = testApp(&out).Run([]string{"assets-writer", "history",
		"--history-db", historyDB,
		"--path", filepath.Join(dir, "other"),
		"show",
	})
	exit, ok := err.(cli.ExitCoder)
	if !ok || exit.ExitCode() != 1 {
		t.Fatalf("history show error = %v, want exit code 1", err)
	}
	if !strings.Contains(err.Error(), filepath.Join(dir, "other", "assets.json")) {
		t.Errorf("history show error = %q, want the output path", err)
	}
}
