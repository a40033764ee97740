package main

// refreshDecision is the single post-success action: either the
// parent detail modal is reopened (which refetches its content), or
// the origin table is reloaded. Never both, never neither.
type refreshDecision struct {
	reopenParent *detailModal
	reloadView   viewID
	reloadTable  bool
}

// resolveRefresh implements the nested-modal policy: a child action
// launched from inside a detail view must return the operator to that
// view, not drop them back to the background page. Only an action
// launched directly from a table refreshes the table.
func resolveRefresh(parent *detailModal, originView viewID) refreshDecision {
	if parent != nil {
		return refreshDecision{reopenParent: parent}
	}
	return refreshDecision{reloadView: originView, reloadTable: true}
}
