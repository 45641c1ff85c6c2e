package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/weighted-voting/auth"
	"github.com/danielhkuo/weighted-voting/governance"
)

var (
	admin  = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	voterX = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	voterY = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func openTestDB(t *testing.T, path string) *Store {
	t.Helper()
	conn, err := Open(TypeSQLite, "file:"+path)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, CreateSchema(conn))
	return NewStore(conn)
}

func TestOpenUnsupportedType(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestCreateSchemaIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.db")
	conn, err := Open(TypeSQLite, "file:"+path)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, CreateSchema(conn))
	require.NoError(t, CreateSchema(conn))
}

func TestLoadInitializesEmptyState(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t, filepath.Join(t.TempDir(), "init.db"))

	_, err := store.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)

	snap, err := store.Load(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, admin, snap.Admin)
	assert.Equal(t, governance.PhaseInactive, snap.Phase)
	assert.Empty(t, snap.Proposals)
	assert.Empty(t, snap.Voters)

	// second load sees the same admin and does not fail
	snap, err = store.Load(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, admin, snap.Admin)
}

func TestLoadRejectsOtherAdmin(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t, filepath.Join(t.TempDir(), "admin.db"))

	_, err := store.Load(ctx, admin)
	require.NoError(t, err)

	_, err = store.Load(ctx, voterX)
	assert.ErrorIs(t, err, ErrAdminMismatch)

	_, err = governance.Open(ctx, voterX, store)
	assert.ErrorIs(t, err, ErrAdminMismatch)
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	store := openTestDB(t, path)
	eng, err := governance.Open(ctx, admin, store)
	require.NoError(t, err)

	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterX, 5))
	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterY, 10))
	_, err = eng.CreateProposal(ctx, admin, "Approve Budget for Q4")
	require.NoError(t, err)
	_, err = eng.CreateProposal(ctx, admin, "Launch new product line")
	require.NoError(t, err)
	require.NoError(t, eng.StartVoting(ctx, admin))
	require.NoError(t, eng.CastVote(ctx, voterX, 0, true))
	require.NoError(t, eng.CastVote(ctx, voterY, 0, false))

	reopened, err := governance.Open(ctx, admin, openTestDB(t, path))
	require.NoError(t, err)

	assert.Equal(t, governance.PhaseActive, reopened.Phase())
	assert.Equal(t, int64(2), reopened.ProposalsCount())
	assert.Equal(t, eng.Proposals(), reopened.Proposals())

	p, err := reopened.Proposal(0)
	require.NoError(t, err)
	assert.Equal(t, int64(15), p.TotalVotingPowerCast)
	assert.Equal(t, int64(5), p.ForVotes)
	assert.Equal(t, int64(10), p.AgainstVotes)

	x := reopened.VoterInfo(voterX)
	assert.True(t, x.Whitelisted)
	assert.True(t, x.HasVoted)
	require.NotNil(t, x.VotedProposalID)
	assert.Equal(t, int64(0), *x.VotedProposalID)

	// the lifetime vote survives a restart
	err = reopened.CastVote(ctx, voterX, 1, true)
	assert.ErrorIs(t, err, governance.ErrAlreadyVoted)
}

func TestWhitelistUpsertPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "upsert.db")

	eng, err := governance.Open(ctx, admin, openTestDB(t, path))
	require.NoError(t, err)
	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterX, 5))
	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterX, 8))

	snap, err := openTestDB(t, path).Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Voters, 1)
	v := snap.Voters[voterX]
	assert.Equal(t, int64(8), v.Weight)
	assert.True(t, v.Whitelisted)
	assert.False(t, v.HasVoted)
	assert.Nil(t, v.VotedProposalID)
}

func TestRecordVoteUnknownProposal(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t, filepath.Join(t.TempDir(), "unknown.db"))
	_, err := store.Load(ctx, admin)
	require.NoError(t, err)

	id := int64(3)
	err = store.RecordVote(ctx,
		governance.Proposal{ID: 3, TotalVotingPowerCast: 1, ForVotes: 1},
		governance.Voter{Address: voterX, Whitelisted: true, Weight: 1, HasVoted: true, VotedProposalID: &id},
	)
	assert.Error(t, err)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Voters, "voter row must roll back with the tally")
}

func TestRecordVoteVoterWriteFails(t *testing.T) {
	ctx := context.Background()
	store := openTestDB(t, filepath.Join(t.TempDir(), "voterfail.db"))
	_, err := store.Load(ctx, admin)
	require.NoError(t, err)
	require.NoError(t, store.AppendProposal(ctx, governance.Proposal{ID: 0, Description: "P0"}))

	// The tally update succeeds; the voter row violates weight >= 0.
	id := int64(0)
	err = store.RecordVote(ctx,
		governance.Proposal{ID: 0, Description: "P0", TotalVotingPowerCast: 4, ForVotes: 4},
		governance.Voter{Address: voterX, Whitelisted: true, Weight: -1, HasVoted: true, VotedProposalID: &id},
	)
	require.Error(t, err)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Proposals, 1)
	p := snap.Proposals[0]
	assert.Zero(t, p.TotalVotingPowerCast, "tally must roll back with the voter row")
	assert.Zero(t, p.ForVotes)
	assert.Zero(t, p.AgainstVotes)
	assert.Empty(t, snap.Voters)
}

func TestAdvanceTimestamp(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timestamps.db")
	store := openTestDB(t, path)

	require.NoError(t, store.AdvanceTimestamp(ctx, voterX, 1000))
	assert.ErrorIs(t, store.AdvanceTimestamp(ctx, voterX, 1000), auth.ErrReplayed)
	assert.ErrorIs(t, store.AdvanceTimestamp(ctx, voterX, 999), auth.ErrReplayed)
	require.NoError(t, store.AdvanceTimestamp(ctx, voterX, 1001))
	require.NoError(t, store.AdvanceTimestamp(ctx, voterY, 5))

	// survives a restart
	reopened := openTestDB(t, path)
	assert.ErrorIs(t, reopened.AdvanceTimestamp(ctx, voterX, 1001), auth.ErrReplayed)
	assert.NoError(t, reopened.AdvanceTimestamp(ctx, voterX, 1002))
}

func TestPhasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "phase.db")

	eng, err := governance.Open(ctx, admin, openTestDB(t, path))
	require.NoError(t, err)
	require.NoError(t, eng.StartVoting(ctx, admin))
	require.NoError(t, eng.EndVoting(ctx, admin))

	snap, err := openTestDB(t, path).Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, governance.PhaseEnded, snap.Phase)
}
