package models

import (
	"fmt"
	"strings"
)

// Status is the four-flag progress record of a link. The flags are stored
// independently; Level reads them as an ordered ladder.
type Status struct {
	Watching   bool `json:"watching"`
	Watched    bool `json:"watched"`
	Understood bool `json:"understood"`
	Applied    bool `json:"applied"`
}

// Level is a stage on the progress ladder.
type Level int

const (
	LevelNone Level = iota
	LevelWatching
	LevelWatched
	LevelUnderstood
	LevelApplied
)

var levelNames = [...]string{"none", "watching", "watched", "understood", "applied"}

func (l Level) String() string {
	if l < LevelNone || l > LevelApplied {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses a ladder stage name. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelNone, fmt.Errorf("unknown status level %q", s)
}

// Field names one of the four status flags.
type Field string

const (
	FieldWatching   Field = "watching"
	FieldWatched    Field = "watched"
	FieldUnderstood Field = "understood"
	FieldApplied    Field = "applied"
)

// ParseField validates a status flag name.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldWatching, FieldWatched, FieldUnderstood, FieldApplied:
		return f, nil
	}
	return "", fmt.Errorf("unknown status field %q", s)
}

// StatusAt returns the status with every stage up to and including l set
// and every later stage cleared.
func StatusAt(l Level) Status {
	return Status{
		Watching:   l >= LevelWatching,
		Watched:    l >= LevelWatched,
		Understood: l >= LevelUnderstood,
		Applied:    l >= LevelApplied,
	}
}

// Level returns the highest stage whose flag is set.
func (s Status) Level() Level {
	switch {
	case s.Applied:
		return LevelApplied
	case s.Understood:
		return LevelUnderstood
	case s.Watched:
		return LevelWatched
	case s.Watching:
		return LevelWatching
	}
	return LevelNone
}

// Set returns a copy of s with exactly one flag changed.
func (s Status) Set(f Field, v bool) Status {
	switch f {
	case FieldWatching:
		s.Watching = v
	case FieldWatched:
		s.Watched = v
	case FieldUnderstood:
		s.Understood = v
	case FieldApplied:
		s.Applied = v
	}
	return s
}
