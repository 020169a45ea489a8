package organizer

import (
	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/richtext"
)

// SetStatusField sets exactly one status flag and leaves the others as they are.
func (s *Store) SetStatusField(libKey, catKey string, index int, field models.Field, value bool) error {
	return s.Update(func(doc *models.Document) error {
		l, err := link(doc, libKey, catKey, index)
		if err != nil {
			return err
		}
		l.Status = l.Status.Set(field, value)
		return nil
	})
}

// SetStatusLevel sets every stage up to and including level and clears
// the later ones. LevelNone clears all four flags.
func (s *Store) SetStatusLevel(libKey, catKey string, index int, level models.Level) error {
	return s.Update(func(doc *models.Document) error {
		l, err := link(doc, libKey, catKey, index)
		if err != nil {
			return err
		}
		l.Status = models.StatusAt(level)
		return nil
	})
}

// NotesInput carries the notes to replace. Nil fields are left as they are.
type NotesInput struct {
	QuickNote *string
	LinkNotes *string
	FullNote  *string
}

// SetNotes applies every given note in one update. A full note derives
// the quick note from the start of its plain text unless QuickNote is
// also given, in which case QuickNote wins.
func (s *Store) SetNotes(libKey, catKey string, index int, in NotesInput) error {
	return s.Update(func(doc *models.Document) error {
		l, err := link(doc, libKey, catKey, index)
		if err != nil {
			return err
		}
		if in.FullNote != nil {
			l.FullNote = *in.FullNote
			l.QuickNote = richtext.Preview(*in.FullNote, models.MaxQuickNote)
		}
		if in.QuickNote != nil {
			l.QuickNote = models.Truncate(*in.QuickNote, models.MaxQuickNote)
		}
		if in.LinkNotes != nil {
			l.LinkNotes = models.Truncate(*in.LinkNotes, models.MaxLinkNotes)
		}
		return nil
	})
}

// SetQuickNote stores the short note, truncated to MaxQuickNote runes.
func (s *Store) SetQuickNote(libKey, catKey string, index int, note string) error {
	return s.SetNotes(libKey, catKey, index, NotesInput{QuickNote: &note})
}

// SetLinkNotes stores the plain notes, truncated to MaxLinkNotes runes.
func (s *Store) SetLinkNotes(libKey, catKey string, index int, notes string) error {
	return s.SetNotes(libKey, catKey, index, NotesInput{LinkNotes: &notes})
}

// SetFullNote stores the rich-text note and derives the quick note from
// the start of its plain text.
func (s *Store) SetFullNote(libKey, catKey string, index int, html string) error {
	return s.SetNotes(libKey, catKey, index, NotesInput{FullNote: &html})
}
