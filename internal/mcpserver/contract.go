package mcpserver

// NoteFormatContract describes how Inkpad derives note fields from text
// and how scopes work, for LLM consumers creating or searching notes.
const NoteFormatContract = `# Inkpad Note Format Contract

A note is plain text or Markdown. Everything else is derived from it.

## Derived fields

- **title**: the first non-blank line, with Markdown syntax removed.
- **description**: the next two non-blank lines, joined, at most 140 characters.
- **searchableText**: the whole text with Markdown syntax removed. Keyword
  search is a case-insensitive substring match against it, so search for
  words as they read, not for markup (` + "`" + `milk` + "`" + `, not ` + "`" + `**milk**` + "`" + `).

## Scopes

Every list is one of:

- ` + "`" + `everything` + "`" + `: all notes that are not archived.
- ` + "`" + `starred` + "`" + `: starred notes that are not archived.
- ` + "`" + `archived` + "`" + `: archived notes only.
- a category name: the non-archived notes of that category.

## Rules

1. **Categories must exist.** ` + "`" + `create_note` + "`" + ` fails for an unknown category;
   call ` + "`" + `list_categories` + "`" + ` first.
2. **Start with a heading line.** The first line becomes the title, so make it
   short and descriptive (` + "`" + `# Weekly standup` + "`" + `).
3. **Hash tags are not parsed from text.** They are assigned separately.
4. **Encoding** is UTF-8.

## Example

` + "```" + `markdown
# Weekly standup 2025-01-20
Attendees: Alice, Bob.
Decisions on the release date.

- Alice to review the design doc
- Bob to update the roadmap
` + "```" + `
`
