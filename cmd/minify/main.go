// Command minify writes minified copies of templates/ and static/ into
// dist/, which the server prefers in production.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

var mediaTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
}

func main() {
	var (
		outDir = flag.String("out", "dist", "Output directory")
		dirs   = flag.String("dirs", "templates,static", "Comma-separated source directories")
	)
	flag.Parse()

	m := newMinifier()
	total := 0
	for _, dir := range strings.Split(*dirs, ",") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		n, err := minifyTree(m, dir, filepath.Join(*outDir, dir))
		if err != nil {
			log.Fatalf("Failed to minify %s: %v", dir, err)
		}
		total += n
	}

	fmt.Printf("Successfully minified %d files into %s\n", total, *outDir)
}

// newMinifier returns a minifier that leaves Go template actions intact.
func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
		TemplateDelims:   html.GoTemplateDelims,
	})
	return m
}

// minifyTree mirrors src into dst, minifying known file types and copying
// everything else verbatim. It returns the number of minified files.
func minifyTree(m *minify.M, src, dst string) (int, error) {
	count := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		input, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return os.WriteFile(target, input, 0o644)
		}
		out, err := m.Bytes(mediaType, input)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		count++
		return os.WriteFile(target, out, 0o644)
	})
	return count, err
}
