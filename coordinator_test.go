package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshFromDetailReopensParentOnly(t *testing.T) {
	parent := &detailModal{}
	decision := resolveRefresh(parent, viewPayments)

	require.NotNil(t, decision.reopenParent)
	assert.Same(t, parent, decision.reopenParent)
	assert.False(t, decision.reloadTable, "a detail-launched action never reloads the background table")
}

func TestRefreshFromTableReloadsOriginOnly(t *testing.T) {
	decision := resolveRefresh(nil, viewPayments)

	assert.Nil(t, decision.reopenParent)
	assert.True(t, decision.reloadTable)
	assert.Equal(t, viewPayments, decision.reloadView)
}

func TestRefreshDecisionIsAlwaysExactlyOne(t *testing.T) {
	for _, view := range []viewID{viewMembers, viewPayments, viewPaymentSystem, viewAdministration} {
		withParent := resolveRefresh(&detailModal{}, view)
		assert.False(t, withParent.reopenParent != nil && withParent.reloadTable, "both refresh targets for %s", view)
		assert.True(t, withParent.reopenParent != nil || withParent.reloadTable, "no refresh target for %s", view)

		withoutParent := resolveRefresh(nil, view)
		assert.False(t, withoutParent.reopenParent != nil && withoutParent.reloadTable, "both refresh targets for %s", view)
		assert.True(t, withoutParent.reopenParent != nil || withoutParent.reloadTable, "no refresh target for %s", view)
	}
}
