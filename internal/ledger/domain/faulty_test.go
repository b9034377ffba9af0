package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultyStatus_Transitions(t *testing.T) {
	tests := []struct {
		from FaultyStatus
		to   FaultyStatus
		ok   bool
	}{
		{FaultyReported, FaultyInRepair, true},
		{FaultyReported, FaultyEOS, true},
		{FaultyReported, FaultyScrapped, true},
		{FaultyReported, FaultyFixed, false},
		{FaultyInRepair, FaultyFixed, true},
		{FaultyInRepair, FaultyEOS, true},
		{FaultyInRepair, FaultyScrapped, true},
		{FaultyInRepair, FaultyReported, false},
		{FaultyFixed, FaultyInRepair, false},
		{FaultyEOS, FaultyReported, false},
		{FaultyScrapped, FaultyInRepair, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestFaultyStatus_IsTerminal(t *testing.T) {
	assert.False(t, FaultyReported.IsTerminal())
	assert.False(t, FaultyInRepair.IsTerminal())
	assert.True(t, FaultyFixed.IsTerminal())
	assert.True(t, FaultyEOS.IsTerminal())
	assert.True(t, FaultyScrapped.IsTerminal())
}

func TestParseFaultyStatus(t *testing.T) {
	st, err := ParseFaultyStatus(" in repair ")
	require.NoError(t, err)
	assert.Equal(t, FaultyInRepair, st)

	st, err = ParseFaultyStatus("eos")
	require.NoError(t, err)
	assert.Equal(t, FaultyEOS, st)

	_, err = ParseFaultyStatus("broken")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestFaultyPhoneReport_Transition(t *testing.T) {
	actor := Actor{UID: "u1", DisplayName: "Ana", Role: RoleClerk}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &FaultyPhoneReport{ID: "r1", Status: FaultyReported}

	require.NoError(t, report.Transition(FaultyInRepair, actor, "sent to bench", at))
	require.NoError(t, report.Transition(FaultyFixed, actor, "", at.Add(time.Hour)))

	assert.Equal(t, FaultyFixed, report.Status)
	require.Len(t, report.StatusHistory, 2)
	assert.Equal(t, FaultyInRepair, report.StatusHistory[0].Status)
	assert.Equal(t, "sent to bench", report.StatusHistory[0].Note)
	assert.Equal(t, "Ana", report.StatusHistory[1].ActorName)

	err := report.Transition(FaultyScrapped, actor, "", at)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "terminal")
	assert.Len(t, report.StatusHistory, 2)
}

func TestFaultyPhoneReport_IllegalTransitionLeavesReportUntouched(t *testing.T) {
	report := &FaultyPhoneReport{ID: "r1", Status: FaultyReported}

	err := report.Transition(FaultyFixed, Actor{UID: "u1"}, "", time.Now())

	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, FaultyReported, report.Status)
	assert.Empty(t, report.StatusHistory)
}

func TestNormalizeSpares(t *testing.T) {
	got := NormalizeSpares([]string{"screen", " battery", "", "screen", "battery "})
	assert.Equal(t, []string{"battery", "screen"}, got)
	assert.Empty(t, NormalizeSpares(nil))
}
