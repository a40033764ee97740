package main

const helpMarkdown = `# taxdesk

Terminal console for the corporation tax program.

## Views

| Key | View |
| --- | ---- |
| 1 | Members |
| 2 | Payments |
| 3 | Payment System |
| 4 | Administration |
| 5 | Manage |

## Tables

- ` + "`r`" + ` reload the active table (a newer reload supersedes an
  in-flight one)
- ` + "`s`" + ` cycle the sort column, ` + "`S`" + ` flip direction
- ` + "`f`" + ` cycle the status filter
- ` + "`y`" + ` copy the selected row's name to the clipboard

## Actions

- ` + "`a`" + ` approve the selected payment, ` + "`d`" + ` decline it
  (a decline needs a reason)
- ` + "`v`" + ` open the payment detail view for the selected user;
  approving or declining from inside it returns you to the detail
  view, refreshed
- ` + "`enter`" + ` confirms inside a modal, ` + "`esc`" + ` cancels

## Manage

- ` + "`up/down`" + ` pick a field, ` + "`enter`" + ` edit it raw,
  ` + "`enter`" + ` again to save
- Saving a tax setting reloads the Payment System table

` + "`l`" + ` shows the local decision journal. ` + "`?`" + ` toggles
this help. ` + "`q`" + ` quits.
`
