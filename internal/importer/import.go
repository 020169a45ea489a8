package importer

import (
	"fmt"
	"strings"

	"github.com/starford/taborganizer/internal/id"
	"github.com/starford/taborganizer/internal/models"
)

// Policy decides what happens to an incoming library whose name already
// exists in the document.
type Policy string

const (
	PolicyMerge  Policy = "merge"
	PolicyRename Policy = "rename"
	PolicySkip   Policy = "skip"
)

// RenameSuffix is appended to libraries imported under PolicyRename.
const RenameSuffix = " (imported)"

// ParsePolicy validates a policy name. The empty string is PolicyMerge.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyMerge, nil
	case PolicyMerge, PolicyRename, PolicySkip:
		return p, nil
	}
	return "", fmt.Errorf("unknown conflict policy %q", s)
}

// Resolution carries per-library conflict decisions keyed by the incoming
// library key. Libraries without an entry use Default.
type Resolution struct {
	Default    Policy
	PerLibrary map[string]Policy
}

func (r Resolution) policy(key string) Policy {
	if p, ok := r.PerLibrary[key]; ok && p != "" {
		return p
	}
	if r.Default == "" {
		return PolicyMerge
	}
	return r.Default
}

// Result summarizes an import.
type Result struct {
	Imported   int      `json:"imported"`
	Skipped    int      `json:"skipped"`
	Categories int      `json:"categories"`
	Links      int      `json:"links"`
	Created    []string `json:"created,omitempty"`
}

// Import integrates in into doc. Incoming libraries are matched to
// existing ones by case-insensitive name against the document as it was
// before the import began. New and renamed libraries always get fresh keys
// and merged categories always get fresh keys, so existing keys are never
// overwritten.
func Import(doc *models.Document, in *Incoming, res Resolution, newKey id.Generator) Result {
	if newKey == nil {
		newKey = id.MustGenerate
	}
	existing := nameIndex(doc)

	var out Result
	for p := in.Libraries.Oldest(); p != nil; p = p.Next() {
		lib := p.Value
		if lib == nil {
			continue
		}
		target, conflict := existing[strings.ToLower(lib.Name)]
		if !conflict {
			out.Created = append(out.Created, addLibrary(doc, lib.Name, lib, newKey, &out))
			out.Imported++
			continue
		}
		switch res.policy(p.Key) {
		case PolicySkip:
			out.Skipped++
		case PolicyRename:
			out.Created = append(out.Created, addLibrary(doc, uniqueName(doc, lib.Name+RenameSuffix), lib, newKey, &out))
			out.Imported++
		default:
			dst := doc.Library(target)
			appendCategories(dst, lib, newKey, &out)
			out.Imported++
		}
	}
	return out
}

// nameIndex maps lower-cased library names to keys. When names repeat the
// last library in display order wins.
func nameIndex(doc *models.Document) map[string]string {
	idx := make(map[string]string, doc.Libraries.Len())
	for p := doc.Libraries.Oldest(); p != nil; p = p.Next() {
		idx[strings.ToLower(p.Value.Name)] = p.Key
	}
	return idx
}

func addLibrary(doc *models.Document, name string, src *models.Library, newKey id.Generator, out *Result) string {
	icon := src.Icon
	if icon == "" {
		icon = models.DefaultLibraryIcon
	}
	key := newKey(id.LibraryPrefix)
	dst := models.NewLibrary(name, icon)
	appendCategories(dst, src, newKey, out)
	doc.Libraries.Set(key, dst)
	return key
}

func appendCategories(dst, src *models.Library, newKey id.Generator, out *Result) {
	for c := src.Categories.Oldest(); c != nil; c = c.Next() {
		if c.Value == nil {
			continue
		}
		cat := c.Value.Clone()
		dst.Categories.Set(newKey(id.CategoryPrefix), cat)
		out.Categories++
		out.Links += len(cat.Links)
	}
}

// uniqueName returns name, numbering it when a library of that name
// already exists.
func uniqueName(doc *models.Document, name string) string {
	taken := nameIndex(doc)
	if _, ok := taken[strings.ToLower(name)]; !ok {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s %d", name, n)
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate
		}
	}
}
