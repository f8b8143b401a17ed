package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/atomicswipe/internal/adapters/storage"
	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournal(t *testing.T) *storage.SQLiteJournal {
	t.Helper()
	j, err := storage.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func makeDecision(id string, kind domain.DecisionKind, at time.Time) domain.Decision {
	return domain.Decision{
		OpportunityID: id,
		Cycle:         "SOL → USDC → SOL",
		Kind:          kind,
		ProfitUSD:     0.42,
		At:            at,
	}
}

func TestSQLiteJournal_RecordAndList(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	id1, err := j.Record(ctx, makeDecision("a", domain.DecisionSkipped, base))
	require.NoError(t, err)

	executed := makeDecision("b", domain.DecisionExecuted, base.Add(time.Second))
	executed.Signatures = []string{"sig1", "sig2"}
	id2, err := j.Record(ctx, executed)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	got, err := j.Decisions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// la más reciente primero
	assert.Equal(t, "b", got[0].OpportunityID)
	assert.Equal(t, domain.DecisionExecuted, got[0].Kind)
	assert.Equal(t, []string{"sig1", "sig2"}, got[0].Signatures)
	assert.True(t, got[0].At.Equal(base.Add(time.Second)))

	assert.Equal(t, "a", got[1].OpportunityID)
	assert.Nil(t, got[1].Signatures)
	assert.InDelta(t, 0.42, got[1].ProfitUSD, 1e-9)
}

func TestSQLiteJournal_FailedKeepsError(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	d := makeDecision("c", domain.DecisionFailed, time.Now())
	d.Error = "confirm: blockhash expired"
	_, err := j.Record(ctx, d)
	require.NoError(t, err)

	got, err := j.Decisions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "confirm: blockhash expired", got[0].Error)
}

func TestSQLiteJournal_DecisionsLimit(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_, err := j.Record(ctx, makeDecision("x", domain.DecisionSkipped, base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	got, err := j.Decisions(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSQLiteJournal_Scans(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, j.RecordScan(ctx, domain.ScanSummary{
		At: base, Outcome: "completed", Tokens: 3, Pairs: 12, Found: 2,
		BestProfitUSD: 1.5, Duration: 4200 * time.Millisecond,
	}))
	require.NoError(t, j.RecordScan(ctx, domain.ScanSummary{At: base.Add(time.Minute), Outcome: "rejected"}))

	got, err := j.Scans(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rejected", got[0].Outcome)
	assert.Equal(t, "completed", got[1].Outcome)
	assert.Equal(t, 12, got[1].Pairs)
	assert.Equal(t, 4200*time.Millisecond, got[1].Duration)
}

func TestSQLiteJournal_Empty(t *testing.T) {
	j := newJournal(t)
	got, err := j.Decisions(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
