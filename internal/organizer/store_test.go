package organizer

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/taborganizer/internal/apperr"
	"github.com/starford/taborganizer/internal/events"
	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/importer"
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/schema"
)

type recordingPersister struct {
	mu    sync.Mutex
	saves [][]byte
}

func (r *recordingPersister) Persist(data []byte) persist.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, append([]byte(nil), data...))
	return persist.StatusLocalOnly
}

func (r *recordingPersister) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recordingPersister) last() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return nil
	}
	return r.saves[len(r.saves)-1]
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newStore(t *testing.T, opts ...Option) (*Store, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{}
	opts = append([]Option{
		WithKeyGenerator(id.Sequence()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(p, opts...), p
}

// assertValid checks the document invariant after a mutation.
func assertValid(t *testing.T, s *Store) {
	t.Helper()
	doc := s.Document()
	if !schema.IsValid(doc) {
		t.Fatalf("document invariant violated: current=%q libraries=%v", doc.CurrentLibrary, doc.LibraryKeys())
	}
}

func TestNew_SeedsGeneralLibrary(t *testing.T) {
	s, p := newStore(t)
	doc := s.Document()
	if doc.Libraries.Len() != 1 || doc.Current() == nil || doc.Current().Name != models.DefaultLibraryName {
		t.Fatalf("document = %v current=%q", doc.LibraryKeys(), doc.CurrentLibrary)
	}
	if p.count() != 0 {
		t.Error("construction must not persist")
	}
}

func TestLibraryLifecycle(t *testing.T) {
	s, p := newStore(t)
	general := s.Document().CurrentLibrary

	key, err := s.CreateLibrary("  Work ", "")
	if err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}
	doc := s.Document()
	if doc.CurrentLibrary != key || doc.Library(key).Name != "Work" || doc.Library(key).Icon != models.DefaultLibraryIcon {
		t.Errorf("library = %+v current=%q", doc.Library(key), doc.CurrentLibrary)
	}
	if _, err := s.CreateLibrary("   ", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank name err = %v", err)
	}

	if err := s.UpdateLibrary(key, "Job", ""); err != nil {
		t.Fatalf("UpdateLibrary: %v", err)
	}
	if lib := s.Document().Library(key); lib.Name != "Job" || lib.Icon != models.DefaultLibraryIcon {
		t.Errorf("updated = %+v", lib)
	}

	if err := s.DeleteLibrary(key); err != nil {
		t.Fatalf("DeleteLibrary: %v", err)
	}
	if got := s.Document().CurrentLibrary; got != general {
		t.Errorf("current after delete = %q, want %q", got, general)
	}
	assertValid(t, s)
	if p.count() != 3 {
		t.Errorf("saves = %d, want 3", p.count())
	}
}

func TestDeleteLibrary_LastIsRefused(t *testing.T) {
	s, p := newStore(t)
	before := s.Document()
	err := s.DeleteLibrary(before.CurrentLibrary)
	if !errors.Is(err, apperr.ErrLastLibrary) {
		t.Fatalf("err = %v, want ErrLastLibrary", err)
	}
	if s.Document().Libraries.Len() != 1 || p.count() != 0 {
		t.Error("refused delete must not mutate or persist")
	}
	if err := s.DeleteLibrary("lib_missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown key err = %v", err)
	}
}

func TestSelectLibrary(t *testing.T) {
	s, _ := newStore(t)
	general := s.Document().CurrentLibrary
	if _, err := s.CreateLibrary("B", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectLibrary(general); err != nil {
		t.Fatalf("SelectLibrary: %v", err)
	}
	if s.Document().CurrentLibrary != general {
		t.Error("selection not applied")
	}
	if err := s.SelectLibrary("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestScenario_AddTrackAndDeleteLibrary(t *testing.T) {
	s, _ := newStore(t)
	general := s.Document().CurrentLibrary

	lib, err := s.CreateLibrary("Study", "📚")
	if err != nil {
		t.Fatal(err)
	}
	cat, err := s.SaveCategory(lib, "", CategoryInput{Name: "Go"})
	if err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}
	idx, err := s.AddLink(lib, cat, LinkInput{URL: "https://go.dev/talk"})
	if err != nil || idx != 0 {
		t.Fatalf("AddLink = %d, %v", idx, err)
	}
	if err := s.SetStatusLevel(lib, cat, idx, models.LevelUnderstood); err != nil {
		t.Fatalf("SetStatusLevel: %v", err)
	}

	got := s.Document().Category(lib, cat).Links[0]
	if got.Title != models.DefaultLinkTitle {
		t.Errorf("title = %q", got.Title)
	}
	if got.Status != models.StatusAt(models.LevelUnderstood) {
		t.Errorf("status = %+v", got.Status)
	}

	if err := s.DeleteLibrary(lib); err != nil {
		t.Fatal(err)
	}
	if s.Document().CurrentLibrary != general {
		t.Error("current should fall back to the remaining library")
	}
	assertValid(t, s)
}

func TestStatusField_IndependentFlags(t *testing.T) {
	s, _ := newStore(t)
	lib := s.Document().CurrentLibrary
	cat, _ := s.SaveCategory(lib, "", CategoryInput{Name: "C"})
	idx, _ := s.AddLink(lib, cat, LinkInput{URL: "http://x"})

	if err := s.SetStatusField(lib, cat, idx, models.FieldApplied, true); err != nil {
		t.Fatal(err)
	}
	if st := s.Document().Category(lib, cat).Links[0].Status; st != (models.Status{Applied: true}) {
		t.Errorf("status = %+v", st)
	}
	if err := s.SetStatusLevel(lib, cat, idx, models.LevelNone); err != nil {
		t.Fatal(err)
	}
	if st := s.Document().Category(lib, cat).Links[0].Status; st != (models.Status{}) {
		t.Errorf("status = %+v", st)
	}
	if err := s.SetStatusField(lib, cat, 5, models.FieldWatched, true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("out of range err = %v", err)
	}
}

func TestNotes(t *testing.T) {
	s, _ := newStore(t)
	lib := s.Document().CurrentLibrary
	cat, _ := s.SaveCategory(lib, "", CategoryInput{Name: "C"})
	idx, _ := s.AddLink(lib, cat, LinkInput{URL: "http://x"})

	if err := s.SetQuickNote(lib, cat, idx, strings.Repeat("a", 150)); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Document().Category(lib, cat).Links[0].QuickNote); n != models.MaxQuickNote {
		t.Errorf("quick note length = %d", n)
	}
	if err := s.SetLinkNotes(lib, cat, idx, strings.Repeat("é", 600)); err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(s.Document().Category(lib, cat).Links[0].LinkNotes)); n != models.MaxLinkNotes {
		t.Errorf("link notes length = %d", n)
	}
	if err := s.SetFullNote(lib, cat, idx, "<p>Hello <b>world</b></p>"); err != nil {
		t.Fatal(err)
	}
	l := s.Document().Category(lib, cat).Links[0]
	if l.FullNote != "<p>Hello <b>world</b></p>" || l.QuickNote != "Hello world" {
		t.Errorf("full=%q quick=%q", l.FullNote, l.QuickNote)
	}
}

func TestSetNotes_OneUpdateQuickNoteWins(t *testing.T) {
	s, rec := newStore(t)
	lib := s.Document().CurrentLibrary
	cat, _ := s.SaveCategory(lib, "", CategoryInput{Name: "C"})
	idx, _ := s.AddLink(lib, cat, LinkInput{URL: "http://x"})
	before := rec.count()

	quick, notes, full := "mine", "plain", "<p>use my_var_name and 2*3*4</p>"
	if err := s.SetNotes(lib, cat, idx, NotesInput{QuickNote: &quick, LinkNotes: &notes, FullNote: &full}); err != nil {
		t.Fatal(err)
	}
	if n := rec.count() - before; n != 1 {
		t.Errorf("persist cycles = %d, want 1", n)
	}
	l := s.Document().Category(lib, cat).Links[0]
	if l.QuickNote != "mine" || l.LinkNotes != "plain" || l.FullNote != full {
		t.Errorf("link = %+v", l)
	}

	if err := s.SetNotes(lib, cat, idx, NotesInput{FullNote: &full}); err != nil {
		t.Fatal(err)
	}
	if got := s.Document().Category(lib, cat).Links[0].QuickNote; got != "use my_var_name and 2*3*4" {
		t.Errorf("derived quick note = %q", got)
	}
	if err := s.SetNotes(lib, cat, 9, NotesInput{QuickNote: &quick}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing link err = %v", err)
	}
}

func TestCategory_SaveMoveDelete(t *testing.T) {
	s, _ := newStore(t)
	a := s.Document().CurrentLibrary
	task := "read it"
	cat, err := s.SaveCategory(a, "", CategoryInput{Name: "Papers", Task: &task})
	if err != nil {
		t.Fatal(err)
	}
	c := s.Document().Category(a, cat)
	if c.Icon != models.DefaultCategoryIcon || c.Color != models.DefaultCategoryColor || c.Task != task {
		t.Errorf("category = %+v", c)
	}
	if _, err := s.AddLink(a, cat, LinkInput{URL: "http://p"}); err != nil {
		t.Fatal(err)
	}

	// Updating keeps links and task when they are not supplied.
	if _, err := s.SaveCategory(a, cat, CategoryInput{Name: "Papers 2", Color: "#000"}); err != nil {
		t.Fatal(err)
	}
	c = s.Document().Category(a, cat)
	if c.Name != "Papers 2" || len(c.Links) != 1 || c.Task != task {
		t.Errorf("updated = %+v", c)
	}

	b, _ := s.CreateLibrary("B", "")
	if err := s.MoveCategory(a, cat, b); err != nil {
		t.Fatalf("MoveCategory: %v", err)
	}
	doc := s.Document()
	if doc.Category(a, cat) != nil || doc.Category(b, cat) == nil || len(doc.Category(b, cat).Links) != 1 {
		t.Errorf("move failed: a=%v b=%v", doc.Library(a).CategoryKeys(), doc.Library(b).CategoryKeys())
	}
	if err := s.DeleteCategory(b, cat); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteCategory(b, cat); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	assertValid(t, s)
}

func TestMoveCategory_KeyCollision(t *testing.T) {
	doc := models.NewDocument()
	a := models.NewLibrary("A", "")
	a.Categories.Set("cat_same", &models.Category{Name: "From A", Links: []models.Link{}})
	b := models.NewLibrary("B", "")
	b.Categories.Set("cat_same", &models.Category{Name: "In B", Links: []models.Link{}})
	doc.Libraries.Set("lib_a", a)
	doc.Libraries.Set("lib_b", b)
	doc.CurrentLibrary = "lib_a"
	s, _ := newStore(t, WithDocument(doc))

	if err := s.MoveCategory("lib_a", "cat_same", "lib_b"); err != nil {
		t.Fatal(err)
	}
	got := s.Document().Library("lib_b")
	if got.Categories.Len() != 2 || got.Category("cat_same").Name != "In B" {
		t.Errorf("target = %v", got.CategoryKeys())
	}
}

func TestReorderCategories(t *testing.T) {
	s, _ := newStore(t)
	lib := s.Document().CurrentLibrary
	var keys []string
	for _, n := range []string{"one", "two", "three"} {
		k, _ := s.SaveCategory(lib, "", CategoryInput{Name: n})
		keys = append(keys, k)
	}
	if err := s.ReorderCategories(lib, keys[0], keys[2]); err != nil {
		t.Fatal(err)
	}
	got := s.Document().Library(lib).CategoryKeys()
	want := []string{keys[1], keys[2], keys[0]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if err := s.ReorderCategories(lib, keys[0], keys[1]); err != nil {
		t.Fatal(err)
	}
	got = s.Document().Library(lib).CategoryKeys()
	if got[0] != keys[0] {
		t.Errorf("order = %v", got)
	}
}

func linkURLs(s *Store, lib, cat string) []string {
	var out []string
	for _, l := range s.Document().Category(lib, cat).Links {
		out = append(out, l.URL)
	}
	return out
}

func TestReorderAndMoveLinks(t *testing.T) {
	s, _ := newStore(t)
	lib := s.Document().CurrentLibrary
	c1, _ := s.SaveCategory(lib, "", CategoryInput{Name: "One"})
	c2, _ := s.SaveCategory(lib, "", CategoryInput{Name: "Two"})
	for _, u := range []string{"a", "b", "c"} {
		if _, err := s.AddLink(lib, c1, LinkInput{URL: u}); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.ReorderLinks(lib, c1, 0, 2); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(linkURLs(s, lib, c1), ""); got != "bca" {
		t.Errorf("after reorder = %s", got)
	}
	if err := s.ReorderLinks(lib, c1, 2, -3); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(linkURLs(s, lib, c1), ""); got != "abc" {
		t.Errorf("after reorder to front = %s", got)
	}

	if err := s.MoveLink(lib, c1, 1, lib, c2, 99); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(linkURLs(s, lib, c1), ""); got != "ac" {
		t.Errorf("source = %s", got)
	}
	if got := strings.Join(linkURLs(s, lib, c2), ""); got != "b" {
		t.Errorf("target = %s", got)
	}
	if err := s.MoveLink(lib, c1, 7, lib, c2, 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("bad index err = %v", err)
	}
}

func TestEditAndDeleteLink(t *testing.T) {
	s, _ := newStore(t)
	lib := s.Document().CurrentLibrary
	cat, _ := s.SaveCategory(lib, "", CategoryInput{Name: "C"})
	idx, _ := s.AddLink(lib, cat, LinkInput{URL: "http://old", Title: "Old"})
	_ = s.SetStatusLevel(lib, cat, idx, models.LevelWatched)

	if err := s.EditLink(lib, cat, idx, LinkInput{URL: "http://new", Title: "New"}); err != nil {
		t.Fatal(err)
	}
	l := s.Document().Category(lib, cat).Links[0]
	if l.URL != "http://new" || l.Status != models.StatusAt(models.LevelWatched) {
		t.Errorf("edited = %+v", l)
	}
	if err := s.EditLink(lib, cat, idx, LinkInput{URL: " "}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank url err = %v", err)
	}
	if err := s.DeleteLink(lib, cat, idx); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Document().Category(lib, cat).Links); n != 0 {
		t.Errorf("links = %d", n)
	}
}

func TestSearch_Containment(t *testing.T) {
	s, _ := newStore(t)
	lib := s.Document().CurrentLibrary
	cat, _ := s.SaveCategory(lib, "", CategoryInput{Name: "Backend"})
	_, _ = s.AddLink(lib, cat, LinkInput{URL: "https://go.dev", Title: "Go Concurrency"})
	_, _ = s.AddLink(lib, cat, LinkInput{URL: "https://rust-lang.org", Title: "Rust"})

	hits := s.Search("CONCURRENCY")
	if len(hits) != 1 || len(hits[0].Categories) != 1 {
		t.Fatalf("hits = %+v", hits)
	}
	links := hits[0].Categories[0].Links
	if len(links) != 2 || !links[0].Matches || links[1].Matches {
		t.Errorf("link hits = %+v", links)
	}
	if hits := s.Search("nothing-matches-this"); len(hits) != 0 {
		t.Errorf("hits = %+v", hits)
	}
	if hits := s.Search("  "); len(hits) != 1 || len(hits[0].Categories) != 1 {
		t.Errorf("empty query should match everything: %+v", hits)
	}
}

func TestEmbedInfo(t *testing.T) {
	tests := []struct {
		url  string
		ok   bool
		want Embed
	}{
		{"https://www.youtube.com/watch?v=abc123&t=4", true, Embed{EmbedYouTube, "https://www.youtube-nocookie.com/embed/abc123"}},
		{"https://youtu.be/xyz", true, Embed{EmbedYouTube, "https://www.youtube-nocookie.com/embed/xyz"}},
		{"https://cdn.example.com/clip.MP4", true, Embed{EmbedFile, "https://cdn.example.com/clip.MP4"}},
		{"https://example.com/page", false, Embed{}},
	}
	for _, tt := range tests {
		got, ok := EmbedInfo(tt.url)
		if ok != tt.ok || got != tt.want {
			t.Errorf("EmbedInfo(%q) = %+v, %v", tt.url, got, ok)
		}
	}
}

func TestApply_InstallsWithoutPersisting(t *testing.T) {
	s, p := newStore(t)
	data, err := s.Apply([]byte(`{"cat_1": {"name": "Legacy", "links": [{"url": "http://l", "isWatching": true}]}}`))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.count() != 0 {
		t.Error("Apply must not persist")
	}
	doc := s.Document()
	if doc.Current() == nil || doc.Current().Category("cat_1") == nil {
		t.Fatalf("document = %v", doc.LibraryKeys())
	}
	var back map[string]json.RawMessage
	if err := json.Unmarshal(data, &back); err != nil || back["libraries"] == nil {
		t.Errorf("canonical form = %s", data)
	}
	if _, err := s.Apply([]byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object document")
	}
}

func TestUpdate_PersistsCanonicalDocument(t *testing.T) {
	s, p := newStore(t)
	if _, err := s.CreateLibrary("X", ""); err != nil {
		t.Fatal(err)
	}
	want, _ := s.Encode()
	if string(p.last()) != string(want) {
		t.Errorf("persisted %s, want %s", p.last(), want)
	}
}

func TestImport_ThroughStore(t *testing.T) {
	rec := &events.Recorder{}
	s, p := newStore(t, WithEvents(rec))
	raw := `{"libraries": {"lib_z": {"name": "Imported Lib", "categories": {"c": {"name": "C", "links": [{"url": "http://i"}]}}}}}`

	pv, err := s.PreviewImport([]byte(raw))
	if err != nil || len(pv.New) != 1 {
		t.Fatalf("preview = %+v, %v", pv, err)
	}
	res, err := s.Import([]byte(raw), importer.Resolution{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 || res.Links != 1 {
		t.Errorf("result = %+v", res)
	}
	if ev, ok := rec.Last(events.TypeImportCompleted); !ok || ev.Data.(events.ImportCompleted).Links != 1 {
		t.Errorf("event = %+v", ev)
	}
	saves := p.count()
	if _, err := s.Import([]byte(`{"nothing": true}`), importer.Resolution{}); !errors.Is(err, apperr.ErrImportParse) {
		t.Errorf("err = %v", err)
	}
	if p.count() != saves {
		t.Error("failed import persisted")
	}
	assertValid(t, s)
}

func TestImport_PreviewKeySelectsPolicy(t *testing.T) {
	inputs := map[string]string{
		"legacy": `{"categories": {"c1": {"name": "Old", "links": [{"url": "http://o.com"}]}}}`,
		"share":  `{"version": "1.0", "categories": [{"name": "S", "links": [{"url": "http://s.com"}]}]}`,
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			s, _ := newStore(t, WithKeyGenerator(id.MustGenerate))
			if _, err := s.CreateLibrary(importer.ImportedLibraryName, ""); err != nil {
				t.Fatal(err)
			}

			pv, err := s.PreviewImport([]byte(raw))
			if err != nil || len(pv.Conflicts) != 1 {
				t.Fatalf("preview = %+v, %v", pv, err)
			}
			res, err := s.Import([]byte(raw), importer.Resolution{
				PerLibrary: map[string]importer.Policy{pv.Conflicts[0].Key: importer.PolicySkip},
			})
			if err != nil {
				t.Fatal(err)
			}
			if res.Skipped != 1 || res.Imported != 0 || res.Links != 0 {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestSnapshotAndExport(t *testing.T) {
	s, _ := newStore(t)
	lib := s.Document().CurrentLibrary
	cat, _ := s.SaveCategory(lib, "", CategoryInput{Name: "C"})
	_, _ = s.AddLink(lib, cat, LinkInput{URL: "https://github.com/a/b"})

	p, err := s.Snapshot(lib, nil, "hi")
	if err != nil || p.LinkCount() != 1 {
		t.Fatalf("snapshot = %+v, %v", p, err)
	}
	if _, err := s.Snapshot("missing", nil, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}

	res, err := s.ImportShare(p, nil, importer.ShareIntoNew, "Friend", "")
	if err != nil || res.Links != 1 {
		t.Fatalf("ImportShare = %+v, %v", res, err)
	}
	if s.Document().CurrentLibrary != res.LibraryKey {
		t.Error("shared library should be current")
	}
	exp, err := s.Export(nil, fixedNow)
	if err != nil || exp.TotalLibraries != 2 {
		t.Errorf("export = %+v, %v", exp, err)
	}
}
