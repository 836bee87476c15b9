package wordfreq

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func encodeCBPack(t *testing.T, bins ...[]string) []byte {
	t.Helper()
	items := []interface{}{map[string]interface{}{"format": "cB", "version": 1}}
	for _, bin := range bins {
		items = append(items, bin)
	}
	data, err := msgpack.Marshal(items)
	if err != nil {
		t.Fatalf("failed to encode cBpack: %v", err)
	}
	return data
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractWordlistOrderAndFilter(t *testing.T) {
	data := encodeCBPack(t,
		[]string{},
		[]string{"hello", "a", "go-1"},
		[]string{"World", "go", "hello"},
		[]string{"straße", "café"},
	)
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/large_en.msgpack.gz": gzipBytes(t, data),
	})

	words, err := ExtractWordlist(wheelPath, "en", "large", 10)
	if err != nil {
		t.Fatalf("ExtractWordlist failed: %v", err)
	}
	expected := []string{"hello", "world", "go"}
	if !reflect.DeepEqual(words, expected) {
		t.Fatalf("expected %v, got %v", expected, words)
	}
}

func TestExtractWordlistFoldsDiacritics(t *testing.T) {
	data := encodeCBPack(t, []string{"café", "straße", "Über"})
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/small_fr.msgpack": data,
	})
	words, err := ExtractWordlist(wheelPath, "fr", "small", 10)
	if err != nil {
		t.Fatalf("ExtractWordlist failed: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"cafe", "uber"}) {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestExtractWordlistLimit(t *testing.T) {
	data := encodeCBPack(t,
		[]string{"hello", "world", "again"},
		[]string{"more", "words"},
	)
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/large_en.msgpack": data,
	})
	words, err := ExtractWordlist(wheelPath, "en", "large", 2)
	if err != nil {
		t.Fatalf("ExtractWordlist failed: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"hello", "world"}) {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestExtractWordlistErrors(t *testing.T) {
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq/data/large_en.msgpack": encodeCBPack(t, []string{"1", "x"}),
		"wordfreq/data/large_de.msgpack": []byte{0xc1},
	})
	if _, err := ExtractWordlist(wheelPath, "en", "large", 0); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := ExtractWordlist(wheelPath, "nl", "large", 5); err == nil {
		t.Fatalf("expected error for missing language")
	}
	if _, err := ExtractWordlist(wheelPath, "en", "large", 5); err == nil {
		t.Fatalf("expected error when nothing survives filtering")
	}
	if _, err := ExtractWordlist(wheelPath, "de", "large", 5); err == nil {
		t.Fatalf("expected error for corrupt data")
	}
}

func TestDecodeCBPackRejectsUnknownFormat(t *testing.T) {
	data, err := msgpack.Marshal([]interface{}{map[string]interface{}{"format": "zipf"}, []string{"a"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := decodeCBPack(bytes.NewReader(data)); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestWriteAttribution(t *testing.T) {
	wheelPath := writeTestWheel(t, map[string][]byte{
		"wordfreq-1.0.0.dist-info/LICENSE": []byte("Apache License"),
	})

	outDir := t.TempDir()
	if err := WriteAttribution(wheelPath, outDir); err != nil {
		t.Fatalf("WriteAttribution failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "ATTRIBUTION.txt")); err != nil {
		t.Fatalf("expected ATTRIBUTION.txt: %v", err)
	}
	license, err := os.ReadFile(filepath.Join(outDir, "LICENSE.txt"))
	if err != nil {
		t.Fatalf("expected LICENSE.txt: %v", err)
	}
	if string(license) != "Apache License" {
		t.Fatalf("unexpected license contents: %s", string(license))
	}
}

func TestListLanguages(t *testing.T) {
	files := map[string][]byte{
		"wordfreq/data/large_en.msgpack.gz":         []byte("x"),
		"wordfreq/data/large_pt-br.msgpack.gz":      []byte("x"),
		"wordfreq/data/small_zh-cn.msgpack.gz":      []byte("x"),
		"wordfreq/data/_chinese_mapping.msgpack.gz": []byte("x"),
		"wordfreq/data/jieba_zh.txt":                []byte("x"),
	}
	wheelPath := writeTestWheel(t, files)

	types, err := ListLanguageTypes(wheelPath)
	if err != nil {
		t.Fatalf("ListLanguageTypes failed: %v", err)
	}
	langs := LanguagesFromTypes(types)
	if !reflect.DeepEqual(langs, []string{"en", "pt-br", "zh-cn"}) {
		t.Fatalf("unexpected languages %v", langs)
	}
	if _, ok := types["zh-cn"]["small"]; !ok {
		t.Fatalf("expected small list for zh-cn")
	}
}

func TestDownloadLatestWheel(t *testing.T) {
	wheel := []byte("wheel-bytes")
	var requests atomic.Int32
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/pypi", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"info":{"version":"3.1.1"},"urls":[
			{"url":"%[1]s/src","filename":"wordfreq-3.1.1.tar.gz","packagetype":"sdist"},
			{"url":"%[1]s/wheel","filename":"wordfreq-3.1.1-py3-none-any.whl","packagetype":"bdist_wheel"}]}`, srv.URL)
	})
	mux.HandleFunc("/wheel", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write(wheel)
	})

	prev := pypiEndpoint
	pypiEndpoint = srv.URL + "/pypi"
	defer func() { pypiEndpoint = prev }()

	cacheDir := t.TempDir()
	got, err := DownloadLatestWheel(context.Background(), cacheDir)
	if err != nil {
		t.Fatalf("DownloadLatestWheel failed: %v", err)
	}
	if got.Cached || got.Version != "3.1.1" || got.Size != int64(len(wheel)) {
		t.Fatalf("unexpected wheel %+v", got)
	}
	data, err := os.ReadFile(filepath.Join(cacheDir, "wordfreq-3.1.1-py3-none-any.whl"))
	if err != nil || !bytes.Equal(data, wheel) {
		t.Fatalf("unexpected cached wheel %q, %v", data, err)
	}

	again, err := DownloadLatestWheel(context.Background(), cacheDir)
	if err != nil {
		t.Fatalf("DownloadLatestWheel failed: %v", err)
	}
	if !again.Cached || requests.Load() != 1 {
		t.Fatalf("expected cached wheel, got %+v after %d requests", again, requests.Load())
	}
}

func writeTestWheel(t *testing.T, files map[string][]byte) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "wordfreq-*.whl")
	if err != nil {
		t.Fatalf("failed to create temp wheel: %v", err)
	}
	defer func() {
		_ = tmpFile.Close()
	}()

	zw := zip.NewWriter(tmpFile)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return tmpFile.Name()
}
