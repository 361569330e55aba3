package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"sentra/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnums(t *testing.T) {
	for _, s := range models.Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, models.Status("Escalated").Valid())
	assert.False(t, models.Status("in review").Valid(), "statuses are case sensitive")

	for _, p := range models.Priorities {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, models.Priority("Urgent").Valid())
	assert.Less(t, models.PriorityHigh.Rank(), models.PriorityCritical.Rank())

	for _, c := range models.Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, models.Category("Parking").Valid())

	assert.True(t, models.AwarenessTip.Valid())
	assert.False(t, models.AwarenessType("news").Valid())
}

func TestAppendHistory_KeepsOrderAndOwner(t *testing.T) {
	inc := &models.Incident{ID: "inc-1"}
	now := time.Now()

	inc.AppendHistory(models.HistoryEntry{Status: models.StatusPending, ChangedByID: "s1", Note: "Incident created", ChangedAt: now})
	inc.AppendHistory(models.HistoryEntry{Status: models.StatusInReview, ChangedByID: "t1", Note: "investigating", ChangedAt: now.Add(time.Minute)})

	require.Len(t, inc.History, 2)
	assert.Equal(t, "Incident created", inc.History[0].Note)
	assert.Equal(t, "investigating", inc.History[1].Note)
	for _, e := range inc.History {
		assert.Equal(t, "inc-1", e.IncidentID)
	}
}

func TestReportedByAndAssignedTo(t *testing.T) {
	reporter, staff := "s1", "t1"
	inc := &models.Incident{ReporterID: &reporter, AssigneeID: &staff}

	assert.True(t, inc.ReportedBy("s1"))
	assert.False(t, inc.ReportedBy("s2"))
	assert.True(t, inc.AssignedTo("t1"))
	assert.False(t, inc.AssignedTo("t2"))

	anon := &models.Incident{IsAnonymous: true}
	assert.False(t, anon.ReportedBy(""))
	assert.False(t, anon.AssignedTo(""))
}

func TestIncidentJSON_HidesHistoryInternals(t *testing.T) {
	inc := &models.Incident{ID: "inc-1", ReferenceID: "SENTRA-ABC", Status: models.StatusPending}
	inc.AppendHistory(models.HistoryEntry{ID: 7, Status: models.StatusPending, ChangedByID: "s1", Note: "Incident created"})

	raw, err := json.Marshal(inc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "SENTRA-ABC", decoded["referenceId"])
	history := decoded["history"].([]any)
	entry := history[0].(map[string]any)
	assert.Equal(t, "s1", entry["changedBy"])
	assert.NotContains(t, entry, "ID")
	assert.NotContains(t, entry, "IncidentID")
	assert.NotContains(t, decoded, "reporter", "anonymous or unexpanded reporter is omitted")
}

func TestIncidentEvent_SnapshotRoundTrip(t *testing.T) {
	staff := "t1"
	inc := &models.Incident{ID: "inc-1", ReferenceID: "SENTRA-X", Status: models.StatusInReview, Priority: models.PriorityHigh, Category: models.CategorySafety, AssigneeID: &staff}

	ev := models.NewIncidentEvent(models.EventIncidentAssigned, inc, "admin-1", time.Now())
	snap := ev.Snapshot()

	assert.Equal(t, "t1", ev.AssigneeID)
	assert.True(t, snap.AssignedTo("t1"))
	assert.Equal(t, models.StatusInReview, snap.Status)
	assert.Equal(t, models.CategorySafety, snap.Category)

	unassigned := models.NewIncidentEvent(models.EventIncidentCreated, &models.Incident{ID: "inc-2"}, "s1", time.Now())
	assert.Nil(t, unassigned.Snapshot().AssigneeID)
}
