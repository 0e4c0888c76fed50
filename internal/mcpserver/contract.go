package mcpserver

// SnapshotFormatContract describes the board model that tool callers read
// from get_board and write through the item tools.
const SnapshotFormatContract = `# Corkboard Snapshot Format

A project is one infinite canvas. Its state is a single JSON snapshot:

` + "```" + `json
{
  "items": [ { "id": "sticky-3", "type": "sticky", "x": 120, "y": 80,
               "w": 250, "h": "auto", "rotation": 0, "z": 4,
               "text": "call the printer", "color": "yellow" } ],
  "pan": { "x": 0, "y": 0 },
  "scale": 1,
  "nextId": 4
}
` + "```" + `

## Coordinates

- Item positions (` + "`x`, `y`" + `) are **world** units: the top-left corner of the item
  before rotation. ` + "`w`" + ` is the width; ` + "`h`" + ` is a number or ` + "`\"auto\"`" + ` when the
  height follows the content.
- ` + "`create_item`" + ` takes a **screen** point and centers the new item under it.
  screen = world * scale + pan.
- ` + "`move_item`" + ` takes a **world** point for the new top-left corner.
- ` + "`scale`" + ` is between 0.1 and 3. ` + "`rotation`" + ` is in degrees around the item center.
- ` + "`z`" + ` orders items; larger is on top. Moving an item raises it.

## Item types

| type | fields | default size |
|---|---|---|
| ` + "`tasklist`" + ` | ` + "`title`, `tasks[]{id,text,checked}`" + ` | 300 x auto |
| ` + "`noteboard`" + ` | ` + "`title`, `noteType` (daily, weekly, monthly, yearly), `date`, `sections[]{id,title,content}`" + ` | 340 x 450 |
| ` + "`sticky`" + ` | ` + "`text`, `color` (yellow, blue, green, pink)" + ` | 250 x auto |
| ` + "`arrow`" + ` | ` + "`color` (any CSS color)" + ` | 200 x 60 |

Ids are ` + "`<type>-<n>`" + ` and are never reused within a project.

## Editing

` + "`edit_item`" + ` takes a JSON patch. Absent fields are left alone:

` + "```" + `json
{
  "title": "Launch", "text": "...", "color": "pink",
  "noteType": "weekly", "date": "2026-W10",
  "addTasks": ["new task"],
  "tasks": [ { "id": "<task id>", "text": "renamed", "checked": true },
             { "id": "<task id>", "remove": true } ],
  "addSections": ["Risks"],
  "sections": [ { "id": "<section id>", "title": "Goals", "content": "ship" } ]
}
` + "```" + `

A field that does not apply to the item type is an error. Edits before the
failing one are kept.

## Tags

Words starting with ` + "`#`" + ` in any title, task, section or sticky text become
project tags, usable as a filter in ` + "`list_projects`" + ` and found by ` + "`search_projects`" + `.
`
