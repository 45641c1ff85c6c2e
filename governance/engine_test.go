package governance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	voterX   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	voterY   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	outsider = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := Open(context.Background(), admin, NopStore{})
	require.NoError(t, err)
	return eng
}

// setupScenario whitelists X (5) and Y (10), creates proposal "P" and starts voting.
func setupScenario(t *testing.T) *Engine {
	t.Helper()
	ctx := context.Background()
	eng := newEngine(t)
	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterX, 5))
	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterY, 10))
	id, err := eng.CreateProposal(ctx, admin, "P")
	require.NoError(t, err)
	require.Equal(t, int64(0), id)
	require.NoError(t, eng.StartVoting(ctx, admin))
	return eng
}

func assertTally(t *testing.T, eng *Engine, id, total, forVotes, against int64) {
	t.Helper()
	p, err := eng.Proposal(id)
	require.NoError(t, err)
	assert.Equal(t, total, p.TotalVotingPowerCast, "total")
	assert.Equal(t, forVotes, p.ForVotes, "for")
	assert.Equal(t, against, p.AgainstVotes, "against")
	assert.Equal(t, p.TotalVotingPowerCast, p.ForVotes+p.AgainstVotes)
}

func TestOpen(t *testing.T) {
	_, err := Open(context.Background(), common.Address{}, NopStore{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	eng := newEngine(t)
	assert.Equal(t, admin, eng.Admin())
	assert.True(t, eng.IsAdministrator(admin))
	assert.False(t, eng.IsAdministrator(outsider))
	assert.Equal(t, PhaseInactive, eng.Phase())
	assert.Equal(t, int64(0), eng.ProposalsCount())
}

func TestOpenRejectsCorruptSnapshot(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{
			name: "sparse proposal ids",
			snap: Snapshot{Admin: admin, Proposals: []Proposal{{ID: 1, Description: "a"}}},
		},
		{
			name: "broken tally",
			snap: Snapshot{Admin: admin, Proposals: []Proposal{{ID: 0, TotalVotingPowerCast: 3, ForVotes: 1}}},
		},
		{
			name: "voted without proposal",
			snap: Snapshot{Admin: admin, Voters: map[common.Address]Voter{voterX: {Whitelisted: true, Weight: 1, HasVoted: true}}},
		},
		{
			name: "other admin",
			snap: Snapshot{Admin: outsider},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), admin, snapshotStore{snap: tt.snap})
			assert.Error(t, err)
		})
	}
}

func TestWhitelistVoter(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  common.Address
		voter   common.Address
		weight  int64
		wantErr error
	}{
		{name: "admin whitelists", caller: admin, voter: voterX, weight: 5},
		{name: "non-admin", caller: outsider, voter: voterX, weight: 5, wantErr: ErrUnauthorized},
		{name: "non-admin with bad weight", caller: outsider, voter: voterX, weight: 0, wantErr: ErrUnauthorized},
		{name: "zero weight", caller: admin, voter: voterX, weight: 0, wantErr: ErrInvalidArgument},
		{name: "negative weight", caller: admin, voter: voterX, weight: -3, wantErr: ErrInvalidArgument},
		{name: "zero address", caller: admin, voter: common.Address{}, weight: 1, wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newEngine(t)
			err := eng.WhitelistVoter(ctx, tt.caller, tt.voter, tt.weight)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Voter{Address: tt.voter}, eng.VoterInfo(tt.voter), "registry must be unchanged")
				return
			}
			require.NoError(t, err)
			v := eng.VoterInfo(tt.voter)
			assert.True(t, v.Whitelisted)
			assert.Equal(t, tt.weight, v.Weight)
			assert.False(t, v.HasVoted)
			assert.Nil(t, v.VotedProposalID)
		})
	}
}

func TestWhitelistVoterUpsertKeepsVote(t *testing.T) {
	ctx := context.Background()
	eng := setupScenario(t)
	require.NoError(t, eng.CastVote(ctx, voterX, 0, true))

	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterX, 42))

	v := eng.VoterInfo(voterX)
	assert.Equal(t, int64(42), v.Weight)
	assert.True(t, v.Whitelisted)
	assert.True(t, v.HasVoted)
	require.NotNil(t, v.VotedProposalID)
	assert.Equal(t, int64(0), *v.VotedProposalID)

	err := eng.CastVote(ctx, voterX, 0, true)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assertTally(t, eng, 0, 5, 5, 0)
}

func TestVoterInfoUnknown(t *testing.T) {
	eng := newEngine(t)
	v := eng.VoterInfo(outsider)
	assert.Equal(t, outsider, v.Address)
	assert.False(t, v.Whitelisted)
	assert.Equal(t, int64(0), v.Weight)
	assert.False(t, v.HasVoted)
	assert.Nil(t, v.VotedProposalID)
}

func TestCreateProposal(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	for i, desc := range []string{"Launch new product line", "Approve Budget for Q4", "Hire"} {
		id, err := eng.CreateProposal(ctx, admin, desc)
		require.NoError(t, err)
		assert.Equal(t, int64(i), id)

		p, err := eng.Proposal(id)
		require.NoError(t, err)
		assert.Equal(t, desc, p.Description)
		assertTally(t, eng, id, 0, 0, 0)
	}
	assert.Equal(t, int64(3), eng.ProposalsCount())

	_, err := eng.CreateProposal(ctx, outsider, "sneaky")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, MsgOnlyAdmin, Message(err))

	_, err = eng.CreateProposal(ctx, admin, "   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = eng.CreateProposal(ctx, outsider, "")
	assert.ErrorIs(t, err, ErrUnauthorized, "authorization is checked before arguments")

	assert.Equal(t, int64(3), eng.ProposalsCount())
	ps := eng.Proposals()
	require.Len(t, ps, 3)
	for i, p := range ps {
		assert.Equal(t, int64(i), p.ID)
	}
}

func TestProposalNotFound(t *testing.T) {
	eng := newEngine(t)
	for _, id := range []int64{-1, 0, 7} {
		_, err := eng.Proposal(id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestPhaseTransitions(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	assert.ErrorIs(t, eng.StartVoting(ctx, outsider), ErrUnauthorized)
	assert.ErrorIs(t, eng.EndVoting(ctx, outsider), ErrUnauthorized)
	assert.ErrorIs(t, eng.EndVoting(ctx, admin), ErrInvalidTransition)
	assert.Equal(t, PhaseInactive, eng.Phase())

	require.NoError(t, eng.StartVoting(ctx, admin))
	assert.Equal(t, PhaseActive, eng.Phase())
	assert.ErrorIs(t, eng.StartVoting(ctx, admin), ErrInvalidTransition)

	require.NoError(t, eng.EndVoting(ctx, admin))
	assert.Equal(t, PhaseEnded, eng.Phase())
	assert.ErrorIs(t, eng.StartVoting(ctx, admin), ErrInvalidTransition)
	assert.ErrorIs(t, eng.EndVoting(ctx, admin), ErrInvalidTransition)
	assert.Equal(t, PhaseEnded, eng.Phase())
}

func TestScenarioA_WeightedTally(t *testing.T) {
	ctx := context.Background()
	eng := setupScenario(t)

	require.NoError(t, eng.CastVote(ctx, voterX, 0, true))
	assertTally(t, eng, 0, 5, 5, 0)

	require.NoError(t, eng.CastVote(ctx, voterY, 0, false))
	assertTally(t, eng, 0, 15, 5, 10)

	forPct, againstPct := eng.Proposals()[0].Shares()
	assert.InDelta(t, 33.33, forPct, 0.01)
	assert.InDelta(t, 66.67, againstPct, 0.01)
}

func TestVoteReturnsTallyItProduced(t *testing.T) {
	ctx := context.Background()
	eng := setupScenario(t)

	p, err := eng.Vote(ctx, voterX, 0, true)
	require.NoError(t, err)
	assert.Equal(t, Proposal{ID: 0, Description: eng.Proposals()[0].Description, TotalVotingPowerCast: 5, ForVotes: 5}, p)

	// A later vote does not change what the first caller got back
	p2, err := eng.Vote(ctx, voterY, 0, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.TotalVotingPowerCast)
	assert.Equal(t, int64(15), p2.TotalVotingPowerCast)
	assert.Equal(t, int64(10), p2.AgainstVotes)

	_, err = eng.Vote(ctx, voterX, 0, true)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestScenarioB_AlreadyVoted(t *testing.T) {
	ctx := context.Background()
	eng := setupScenario(t)
	require.NoError(t, eng.CastVote(ctx, voterX, 0, true))
	require.NoError(t, eng.CastVote(ctx, voterY, 0, false))

	err := eng.CastVote(ctx, voterX, 0, true)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, MsgAlreadyVoted, Message(err))
	assertTally(t, eng, 0, 15, 5, 10)
}

func TestAlreadyVotedAcrossProposals(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)
	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterX, 5))
	_, err := eng.CreateProposal(ctx, admin, "first")
	require.NoError(t, err)
	_, err = eng.CreateProposal(ctx, admin, "second")
	require.NoError(t, err)
	require.NoError(t, eng.StartVoting(ctx, admin))

	require.NoError(t, eng.CastVote(ctx, voterX, 1, false))
	assert.ErrorIs(t, eng.CastVote(ctx, voterX, 0, true), ErrAlreadyVoted)

	assertTally(t, eng, 0, 0, 0, 0)
	assertTally(t, eng, 1, 5, 0, 5)
	v := eng.VoterInfo(voterX)
	require.NotNil(t, v.VotedProposalID)
	assert.Equal(t, int64(1), *v.VotedProposalID)
}

func TestScenarioC_NotActive(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)
	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterX, 5))
	_, err := eng.CreateProposal(ctx, admin, "Test Inactive")
	require.NoError(t, err)

	err = eng.CastVote(ctx, voterX, 0, true)
	assert.ErrorIs(t, err, ErrNotActive)
	assert.Equal(t, MsgNotActive, Message(err))
	assertTally(t, eng, 0, 0, 0, 0)
	assert.False(t, eng.VoterInfo(voterX).HasVoted)
}

func TestNotActiveAfterEnd(t *testing.T) {
	ctx := context.Background()
	eng := setupScenario(t)
	require.NoError(t, eng.EndVoting(ctx, admin))

	// Phase is checked before anything else, even for outsiders and bad ids.
	assert.ErrorIs(t, eng.CastVote(ctx, voterX, 0, true), ErrNotActive)
	assert.ErrorIs(t, eng.CastVote(ctx, outsider, 0, true), ErrNotActive)
	assert.ErrorIs(t, eng.CastVote(ctx, voterX, 99, true), ErrNotActive)

	// Proposals created after the end can never be voted on either.
	id, err := eng.CreateProposal(ctx, admin, "late")
	require.NoError(t, err)
	assert.ErrorIs(t, eng.CastVote(ctx, voterY, id, true), ErrNotActive)
	assertTally(t, eng, 0, 0, 0, 0)
}

func TestScenarioD_NotWhitelisted(t *testing.T) {
	ctx := context.Background()
	eng := setupScenario(t)

	err := eng.CastVote(ctx, outsider, 0, true)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, MsgOnlyWhitelisted, Message(err))
	assertTally(t, eng, 0, 0, 0, 0)

	// Whitelist check precedes the existence check.
	assert.ErrorIs(t, eng.CastVote(ctx, outsider, 42, true), ErrUnauthorized)
}

func TestScenarioE_NonAdminWhitelist(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	err := eng.WhitelistVoter(ctx, outsider, outsider, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, Voter{Address: outsider}, eng.VoterInfo(outsider))
}

func TestCastVoteCheckOrder(t *testing.T) {
	ctx := context.Background()
	eng := setupScenario(t)
	require.NoError(t, eng.CastVote(ctx, voterX, 0, true))

	// already voted wins over an unknown proposal
	assert.ErrorIs(t, eng.CastVote(ctx, voterX, 5, true), ErrAlreadyVoted)

	err := eng.CastVote(ctx, voterY, 5, true)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, MsgInvalidProposal, Message(err))
	assert.False(t, eng.VoterInfo(voterY).HasVoted)
}

func TestCastVoteOverflow(t *testing.T) {
	ctx := context.Background()
	eng := setupScenario(t)
	big := common.HexToAddress("0x00000000000000000000000000000000000000b3")
	require.NoError(t, eng.WhitelistVoter(ctx, admin, big, 1<<62))
	other := common.HexToAddress("0x00000000000000000000000000000000000000b4")
	require.NoError(t, eng.WhitelistVoter(ctx, admin, other, 1<<62))

	require.NoError(t, eng.CastVote(ctx, big, 0, true))
	assert.ErrorIs(t, eng.CastVote(ctx, other, 0, true), ErrInvalidArgument)
	assertTally(t, eng, 0, 1<<62, 1<<62, 0)
	assert.False(t, eng.VoterInfo(other).HasVoted)
}

func TestStoreFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{}
	eng, err := Open(ctx, admin, store)
	require.NoError(t, err)
	require.NoError(t, eng.WhitelistVoter(ctx, admin, voterX, 5))
	_, err = eng.CreateProposal(ctx, admin, "P")
	require.NoError(t, err)
	require.NoError(t, eng.StartVoting(ctx, admin))

	store.fail = true

	assert.ErrorIs(t, eng.CastVote(ctx, voterX, 0, true), errStoreDown)
	assertTally(t, eng, 0, 0, 0, 0)
	assert.False(t, eng.VoterInfo(voterX).HasVoted)

	assert.ErrorIs(t, eng.WhitelistVoter(ctx, admin, voterY, 3), errStoreDown)
	assert.False(t, eng.VoterInfo(voterY).Whitelisted)

	_, err = eng.CreateProposal(ctx, admin, "Q")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, int64(1), eng.ProposalsCount())

	assert.ErrorIs(t, eng.EndVoting(ctx, admin), errStoreDown)
	assert.Equal(t, PhaseActive, eng.Phase())

	store.fail = false
	require.NoError(t, eng.CastVote(ctx, voterX, 0, true))
	assertTally(t, eng, 0, 5, 5, 0)
}

func TestConcurrentVotes(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)
	_, err := eng.CreateProposal(ctx, admin, "P")
	require.NoError(t, err)

	const n = 50
	voters := make([]common.Address, n)
	for i := range voters {
		voters[i] = common.BytesToAddress([]byte{0xd0, byte(i)})
		require.NoError(t, eng.WhitelistVoter(ctx, admin, voters[i], int64(i+1)))
	}
	require.NoError(t, eng.StartVoting(ctx, admin))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var wantFor, wantAgainst int64
	cast := func(i int, v common.Address) {
		defer wg.Done()
		support := i%2 == 0
		if err := eng.CastVote(ctx, v, 0, support); err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if support {
			wantFor += int64(i + 1)
		} else {
			wantAgainst += int64(i + 1)
		}
	}
	for i, v := range voters {
		wg.Add(3)
		// two racing attempts per voter; exactly one may win
		go cast(i, v)
		go cast(i, v)
		go func() {
			defer wg.Done()
			_ = eng.Proposals()
		}()
	}
	wg.Wait()

	assertTally(t, eng, 0, n*(n+1)/2, wantFor, wantAgainst)
	for _, v := range voters {
		assert.True(t, eng.VoterInfo(v).HasVoted)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	rec := &countingRecorder{ops: map[string]int{}}
	eng, err := Open(ctx, admin, NopStore{}, WithRecorder(rec))
	require.NoError(t, err)

	_, err = eng.Apply(ctx, admin, WhitelistVoterCmd{Voter: voterX, Weight: 7})
	require.NoError(t, err)

	res, err := eng.Apply(ctx, admin, CreateProposalCmd{Description: "P"})
	require.NoError(t, err)
	require.NotNil(t, res.ProposalID)
	assert.Equal(t, int64(0), *res.ProposalID)

	res, err = eng.Apply(ctx, admin, StartVotingCmd{})
	require.NoError(t, err)
	require.NotNil(t, res.Phase)
	assert.Equal(t, PhaseActive, *res.Phase)

	_, err = eng.Apply(ctx, outsider, EndVotingCmd{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err = eng.Apply(ctx, voterX, VoteCmd{ProposalID: 0, Support: false})
	require.NoError(t, err)
	assert.Equal(t, OpVote, res.Op)
	assertTally(t, eng, 0, 7, 0, 7)

	res, err = eng.Apply(ctx, admin, EndVotingCmd{})
	require.NoError(t, err)
	assert.Equal(t, PhaseEnded, *res.Phase)

	assert.Equal(t, 1, rec.ops[OpWhitelistVoter])
	assert.Equal(t, 2, rec.ops[OpEndVoting])
	assert.Equal(t, 1, rec.failures[OpEndVoting])
	assert.Equal(t, int64(7), rec.weight)
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{PhaseInactive, PhaseActive, PhaseEnded} {
		b, err := p.MarshalText()
		require.NoError(t, err)
		var got Phase
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, p, got)
	}
	_, err := ParsePhase("paused")
	assert.Error(t, err)
}

type snapshotStore struct {
	NopStore
	snap Snapshot
}

func (s snapshotStore) Load(context.Context, common.Address) (*Snapshot, error) {
	snap := s.snap
	return &snap, nil
}

var errStoreDown = errors.New("store down")

type flakyStore struct {
	NopStore
	fail bool
}

func (s *flakyStore) err() error {
	if s.fail {
		return errStoreDown
	}
	return nil
}

func (s *flakyStore) SaveVoter(context.Context, Voter) error            { return s.err() }
func (s *flakyStore) AppendProposal(context.Context, Proposal) error    { return s.err() }
func (s *flakyStore) SavePhase(context.Context, Phase) error            { return s.err() }
func (s *flakyStore) RecordVote(context.Context, Proposal, Voter) error { return s.err() }

type countingRecorder struct {
	mu       sync.Mutex
	ops      map[string]int
	failures map[string]int
	weight   int64
}

func (r *countingRecorder) Op(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op]++
	if err != nil {
		if r.failures == nil {
			r.failures = map[string]int{}
		}
		r.failures[op]++
	}
}

func (r *countingRecorder) VoteCast(_ bool, weight int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weight += weight
}
