package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []ProjectStatus{ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectCancelled}

	allowed := map[[2]ProjectStatus]bool{
		{ProjectOpen, ProjectInProgress}:      true,
		{ProjectOpen, ProjectCancelled}:       true,
		{ProjectInProgress, ProjectCompleted}: true,
		{ProjectInProgress, ProjectCancelled}: true,
	}

	// The table is total: every pair outside the allowed set is rejected,
	// including open -> completed and every self-transition.
	for _, from := range all {
		for _, to := range all {
			got := CanTransition(from, to)
			want := allowed[[2]ProjectStatus{from, to}]
			assert.Equalf(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	for _, terminal := range []ProjectStatus{ProjectCompleted, ProjectCancelled} {
		for _, to := range []ProjectStatus{ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectCancelled} {
			assert.Falsef(t, CanTransition(terminal, to), "%s must be terminal", terminal)
		}
	}
}

func TestValidProjectStatus(t *testing.T) {
	assert.True(t, ValidProjectStatus(ProjectOpen))
	assert.True(t, ValidProjectStatus(ProjectInProgress))
	assert.True(t, ValidProjectStatus(ProjectCompleted))
	assert.True(t, ValidProjectStatus(ProjectCancelled))
	assert.False(t, ValidProjectStatus("archived"))
	assert.False(t, ValidProjectStatus(""))
}

func TestValidBidStatus(t *testing.T) {
	assert.True(t, ValidBidStatus(BidPending))
	assert.True(t, ValidBidStatus(BidAccepted))
	assert.True(t, ValidBidStatus(BidRejected))
	assert.True(t, ValidBidStatus(BidCountered))
	assert.False(t, ValidBidStatus("withdrawn"))
}

func TestValidEarningStatus(t *testing.T) {
	assert.True(t, ValidEarningStatus(EarningPending))
	assert.True(t, ValidEarningStatus(EarningCompleted))
	assert.False(t, ValidEarningStatus("paid"))
}

func TestBidHasCounter(t *testing.T) {
	var b Bid
	assert.False(t, b.HasCounter())

	amount := int64(550)
	b.CounterAmount = &amount
	assert.True(t, b.HasCounter())
}
