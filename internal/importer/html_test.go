package importer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/importer"
	"github.com/nikbrunner/shelf/internal/model"
)

const nested = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890" TAGS="js, ui">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><H3>Empty</H3>
    <DL><p>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

func parse(t *testing.T, src string) *importer.Document {
	t.Helper()
	doc, err := importer.ParseHTML(strings.NewReader(src))
	assert.NilError(t, err)
	return doc
}

func TestParseHTML_SingleBookmark(t *testing.T) {
	doc := parse(t, `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`)

	assert.Equal(t, len(doc.Collections), 0)
	assert.Equal(t, len(doc.Entries), 1)

	e := doc.Entries[0]
	assert.Equal(t, e.Draft.Title, "Example Site")
	assert.Equal(t, e.Draft.URL, "https://example.com")
	assert.Equal(t, len(e.Collections), 0)
	assert.Assert(t, e.AddedAt.Equal(time.Unix(1234567890, 0)))
	assert.DeepEqual(t, e.Draft.Tags, []string{})
}

func TestParseHTML_NestedFolders(t *testing.T) {
	doc := parse(t, nested)

	assert.DeepEqual(t, doc.Collections, []string{"Development", "Development / React", "Empty"})

	byTitle := map[string]importer.Entry{}
	for _, e := range doc.Entries {
		byTitle[e.Draft.Title] = e
	}
	assert.Equal(t, len(byTitle), 3)
	assert.DeepEqual(t, byTitle["React Docs"].Collections, []string{"Development / React"})
	assert.DeepEqual(t, byTitle["React Docs"].Draft.Tags, []string{"js", "ui"})
	assert.DeepEqual(t, byTitle["GitHub"].Collections, []string{"Development"})
	assert.Equal(t, len(byTitle["Google"].Collections), 0)
}

func TestParseHTML_EdgeCases(t *testing.T) {
	doc := parse(t, `<DL><p>
    <DT><A>No URL</A>
    <DT><A HREF="https://untitled.example.com"></A>
    <DT><A HREF="https://bad-date.example.com" ADD_DATE="yesterday">Bad date</A>
</DL>`)

	assert.Equal(t, len(doc.Entries), 2)
	assert.Equal(t, doc.Entries[0].Draft.Title, "https://untitled.example.com")
	assert.Assert(t, doc.Entries[1].AddedAt.IsZero())
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory(backend.WithData([]model.Bookmark{
		{ID: "existing", Title: "GitHub", URL: "https://github.com/", Tags: []string{}},
	}, nil))

	summary, err := importer.New(mem, nil).Import(ctx, parse(t, nested))
	assert.NilError(t, err)
	assert.Equal(t, summary, importer.Summary{Added: 2, Duplicates: 1, Collections: 3})

	bookmarks, err := mem.ListBookmarks(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(bookmarks), 3)

	collections, err := mem.ListCollections(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(collections), 3)

	byName := map[string]model.Collection{}
	for _, c := range collections {
		byName[c.Name] = c
	}
	assert.DeepEqual(t, byName["Development"].BookmarkIDs, []string{"existing"})
	assert.Equal(t, len(byName["Development / React"].BookmarkIDs), 1)
	assert.Equal(t, len(byName["Empty"].BookmarkIDs), 0)
}

func TestImporter_SkipsInvalid(t *testing.T) {
	ctx := context.Background()
	mem := backend.NewMemory()
	doc := &importer.Document{Entries: []importer.Entry{
		{Draft: model.Draft{Title: "Relative", URL: "/docs"}},
		{Draft: model.Draft{Title: "Go", URL: "https://go.dev"}},
		{Draft: model.Draft{Title: "Go again", URL: "https://go.dev/"}},
	}}

	summary, err := importer.New(mem, nil).Import(ctx, doc)

	assert.NilError(t, err)
	assert.Equal(t, summary, importer.Summary{Added: 1, Duplicates: 1, Invalid: 1})
}
