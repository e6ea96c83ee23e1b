package inject

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/assets-writer/pkg/manifest"
)

const assetsDoc = `{
	"publicPath": "/calypso/",
	"manifests": {"manifest": "window.a = 1 < 2 && 3 > 2;"},
	"entrypoints": {
		"build": {"chunks": [0, 1], "assets": ["/calypso/vendor.js", "/calypso/build.css", "/calypso/build.js"]},
		"login": {"chunks": [2], "assets": [{"name": "/calypso/login.js", "size": 3}]}
	},
	"assetsByChunkName": {},
	"chunks": []
}`

const page = `<!DOCTYPE html><html><head><title>Calypso</title></head><body><div id="wpcom"></div></body></html>`

func parseManifest(t *testing.T) *manifest.AssetManifest {
	t.Helper()
	m, err := manifest.Parse([]byte(assetsDoc))
	if err != nil {
		t.Fatalf("manifest.Parse() error = %v", err)
	}
	return m
}

func TestInject(t *testing.T) {
	out, err := Inject([]byte(page), parseManifest(t), "build")
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(out)))
	if err != nil {
		t.Fatal(err)
	}

	if href, _ := doc.Find(`head link[rel="stylesheet"]`).Attr("href"); href != "/calypso/build.css" {
		t.Errorf("stylesheet href = %q", href)
	}

	scripts := doc.Find("body script")
	if scripts.Length() != 3 {
		t.Fatalf("body scripts = %d, want 3:\n%s", scripts.Length(), out)
	}
	if got := scripts.Eq(0).Text(); got != "window.a = 1 < 2 && 3 > 2;" {
		t.Errorf("inline manifest = %q", got)
	}
	var srcs []string
	scripts.Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			srcs = append(srcs, src)
		}
	})
	if strings.Join(srcs, ",") != "/calypso/vendor.js,/calypso/build.js" {
		t.Errorf("script srcs = %v", srcs)
	}

	if !strings.Contains(string(out), "window.a = 1 < 2 && 3 > 2;") {
		t.Errorf("inline manifest was escaped:\n%s", out)
	}
	if doc.Find("#wpcom").Length() != 1 {
		t.Error("existing body content lost")
	}
}

func TestInjectObjectAssets(t *testing.T) {
	out, err := Inject([]byte(page), parseManifest(t), "login")
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if !strings.Contains(string(out), `<script src="/calypso/login.js"></script>`) {
		t.Errorf("login script missing:\n%s", out)
	}
}

func TestInjectUnknownEntry(t *testing.T) {
	if _, err := Inject([]byte(page), parseManifest(t), "nope"); err == nil {
		t.Error("Inject() expected error for unknown entrypoint")
	}
}

func TestInjectKeepsInlineSourceInsideScript(t *testing.T) {
	m, err := manifest.Parse([]byte(`{
		"publicPath": "/",
		"manifests": {"manifest": "var s='</SCRIPT><img src=x onerror=alert(1)>'; var c='<!--';"},
		"entrypoints": {"main": {"chunks": [0], "assets": []}},
		"assetsByChunkName": {},
		"chunks": []
	}`))
	if err != nil {
		t.Fatalf("manifest.Parse() error = %v", err)
	}

	out, err := Inject([]byte(page), m, "main")
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(out)))
	if err != nil {
		t.Fatal(err)
	}
	if n := doc.Find("img").Length(); n != 0 {
		t.Errorf("inline source escaped its script element, found %d img:\n%s", n, out)
	}
	want := `var s='<\/SCRIPT><img src=x onerror=alert(1)>'; var c='<\!--';`
	if got := doc.Find(`script[data-manifest="manifest"]`).Text(); got != want {
		t.Errorf("inline manifest = %q, want %q", got, want)
	}
}
