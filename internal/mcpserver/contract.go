package mcpserver

// SnapshotContract describes the portable snapshot format accepted by the
// share import flow.
const SnapshotContract = `# Shared Library Snapshot Format

A snapshot is a JSON object holding an ordered subset of one library.
It never carries progress status or rich-text notes.

` + "```" + `json
{
  "version": "1.0",
  "message": "optional note to the recipient, at most 200 characters",
  "categories": [
    {
      "name": "Videos",
      "position": 0,
      "notes": "category task text",
      "links": [
        {
          "title": "Talk",
          "url": "https://www.youtube.com/watch?v=abc",
          "thumbnail": "",
          "link_type": "video",
          "notes": "short note",
          "position": 0
        }
      ]
    }
  ]
}
` + "```" + `

## Rules

1. **categories is an array** in display order. ` + "`" + `position` + "`" + ` repeats the index.
2. **link_type** is one of video, repository, article, reference, other.
3. **notes** on a link is the plain notes text, or the quick note when there is none.
4. On import every link starts with all four progress flags cleared, its
   thumbnail becomes the icon and its notes become the quick note.
5. Categories without a name import as "Unnamed"; links without a title as "Untitled".
6. Accepting into a new library names it "<sender library> (shared)".
`
