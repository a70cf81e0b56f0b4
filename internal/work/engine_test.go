package work

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/colony/internal/agents"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

func newEngine(t *testing.T, tr *territory.Territory, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(tr, params(), DefaultRules(), chebyshev, opts...)
	require.NoError(t, err)
	return e
}

func TestEligiblePreservesRankingOrder(t *testing.T) {
	rules := DefaultRules()
	ranking := []Category{Upgrade, Pickup, Build, SupplyCritical, Repair}

	loaded := newWorker("w", at(0, 0), 50)
	assert.Equal(t, []Category{Upgrade, Pickup, Build, SupplyCritical, Repair}, rules.Eligible(loaded, ranking))

	empty := newWorker("w", at(0, 0), 0)
	assert.Equal(t, []Category{Pickup}, rules.Eligible(empty, ranking))

	full := newHauler("h", at(0, 0), 100)
	assert.Equal(t, []Category{SupplyCritical}, rules.Eligible(full, ranking))
}

func TestRulesValidate(t *testing.T) {
	reg := agents.DefaultRegistry()
	assert.NoError(t, DefaultRules().Validate(reg))

	delete(reg, agents.RoleSupplier)
	err := DefaultRules().Validate(reg)
	assert.ErrorIs(t, err, agents.ErrInconsistentConfiguration)
}

func TestEmptyRoleSetIsInert(t *testing.T) {
	tr := fullTerritory()
	rules := DefaultRules()
	rules[Pickup] = Rule{Capable: canGather}
	require.NoError(t, rules.Validate(agents.DefaultRegistry()))

	e, err := NewEngine(tr, params(), rules, chebyshev)
	require.NoError(t, err)

	as, ok := e.Assign(newHauler("h", at(5, 6), 0))
	require.True(t, ok)
	assert.Equal(t, string(Collect), as.Category)
}

func TestAssignPriorityExhaustion(t *testing.T) {
	tr := fullTerritory()
	e := newEngine(t, tr)

	// A loaded worker can supply; the spawn outranks everything else.
	w := newWorker("w1", at(9, 9), 100)
	tr.Agents = append(tr.Agents, w)
	as, ok := e.Assign(w)
	require.True(t, ok)
	assert.Equal(t, agents.Assignment{Category: "supplyCritical", Target: "spawn", Room: home}, as)

	// The spawn item is now capped; the next loaded worker falls to the tower
	// even though a build site sits right next to it.
	w2 := newWorker("w2", at(9, 8), 100)
	tr.Agents = append(tr.Agents, w2)
	as, ok = e.Assign(w2)
	require.True(t, ok)
	assert.Equal(t, "supply", as.Category)
	assert.Equal(t, world.ObjectID("tower"), as.Target)
}

func TestAssignNeverSkipsHigherPriority(t *testing.T) {
	tr := fullTerritory()
	ranking, err := ParseRanking(params().Ranking)
	require.NoError(t, err)
	rules := DefaultRules()

	for i := 0; i < 20; i++ {
		e := newEngine(t, tr)
		a := newWorker(world.ObjectID("w"), at(i, 40), 40)
		as, ok := e.Assign(a)
		require.True(t, ok)

		// No category ranked above the chosen one had open work.
		for _, cat := range rules.Eligible(a, ranking) {
			if string(cat) == as.Category {
				break
			}
			for _, it := range e.Catalog().list(cat, a.ID) {
				assert.True(t, it.Capped(), "open %s item skipped", cat)
			}
		}
	}
}

func TestAssignFortifyTieBreak(t *testing.T) {
	tr := newTerritory()
	tr.Controller = nil
	tr.Structures = []*territory.Structure{
		{ID: "w500", Kind: territory.KindWall, Pos: at(2, 2), Hits: 500, HitsMax: 1000000},
		{ID: "w2000", Kind: territory.KindWall, Pos: at(3, 2), Hits: 2000, HitsMax: 1000000},
		{ID: "w100", Kind: territory.KindWall, Pos: at(48, 48), Hits: 100, HitsMax: 1000000},
	}
	e := newEngine(t, tr)

	as, ok := e.Assign(newWorker("w", at(2, 3), 50))
	require.True(t, ok)
	assert.Equal(t, "fortify", as.Category)
	assert.Equal(t, world.ObjectID("w100"), as.Target, "most damaged wins regardless of distance")
}

func TestAssignNearestInRoomFirstElsewhere(t *testing.T) {
	tr := newTerritory()
	tr.Controller = nil
	tr.Sites = []*territory.Site{
		{ID: "far", Kind: territory.KindExtension, Pos: at(45, 45), ProgressTotal: 3000},
		{ID: "near", Kind: territory.KindExtension, Pos: at(6, 6), ProgressTotal: 3000},
	}

	e := newEngine(t, tr)
	as, ok := e.Assign(newWorker("in", at(5, 5), 50))
	require.True(t, ok)
	assert.Equal(t, world.ObjectID("near"), as.Target)

	e = newEngine(t, tr)
	traveller := newWorker("out", world.Pos{Room: "Q1R0", X: 5, Y: 5}, 50)
	as, ok = e.Assign(traveller)
	require.True(t, ok)
	assert.Equal(t, world.ObjectID("far"), as.Target, "catalog order outside the territory")
}

func TestAssignRespectsCaps(t *testing.T) {
	tr := fullTerritory()
	e := newEngine(t, tr)

	for i := 0; i < 40; i++ {
		a := newWorker(world.ObjectID(rune('A'+i)), at(i%50, 20), 20+i)
		if i%3 == 0 {
			a = newHauler(a.ID, a.Pos, 0)
		}
		tr.Agents = append(tr.Agents, a)
		e.Assign(a)
	}

	for _, cat := range Categories {
		for _, it := range e.Catalog().ListWorkItems(cat) {
			assert.LessOrEqual(t, it.Committed, it.MaxAgents, "%s %s", cat, it.Target.ID())
		}
	}
}

func TestAssignSkipsStaleTargets(t *testing.T) {
	tr := newTerritory()
	tr.Controller = nil
	tr.Piles = []*territory.Pile{
		{ID: "gone", Pos: at(5, 5), Amount: 100},
		{ID: "there", Pos: at(30, 30), Amount: 100},
	}
	e := newEngine(t, tr, WithLiveness(func(id world.ObjectID) bool { return id != "gone" }))

	as, ok := e.Assign(newHauler("h", at(5, 6), 0))
	require.True(t, ok)
	assert.Equal(t, world.ObjectID("there"), as.Target)
}

func TestAssignAllStaleFallsThrough(t *testing.T) {
	tr := newTerritory()
	tr.Piles = []*territory.Pile{{ID: "gone", Pos: at(5, 5), Amount: 100}}
	tr.Structures = []*territory.Structure{
		{ID: "box", Kind: territory.KindContainer, Pos: at(7, 7), Hits: 1, HitsMax: 1, Energy: 900},
	}
	e := newEngine(t, tr, WithLiveness(func(id world.ObjectID) bool { return id != "gone" }))

	as, ok := e.Assign(newHauler("h", at(5, 6), 0))
	require.True(t, ok)
	assert.Equal(t, "collect", as.Category)
}

func TestAssignNothingToDo(t *testing.T) {
	e := newEngine(t, &territory.Territory{Name: home})
	_, ok := e.Assign(newWorker("w", at(1, 1), 0))
	assert.False(t, ok)
	assert.Empty(t, e.Assignments())
}

func TestReassignIgnoresOwnCommitment(t *testing.T) {
	tr := newTerritory()
	tr.Controller = nil
	tr.Piles = []*territory.Pile{{ID: "pile", Pos: at(5, 5), Amount: 100}}
	h := newHauler("h", at(5, 6), 0)
	h.Assignment = &agents.Assignment{Category: "pickup", Target: "pile", Room: home}
	tr.Agents = []*agents.Agent{h}

	e := newEngine(t, tr)
	as, ok := e.Assign(h)
	require.True(t, ok)
	assert.Equal(t, world.ObjectID("pile"), as.Target)
}

func TestNewEngineRejectsBadRanking(t *testing.T) {
	p := params()
	p.Ranking = []string{"pickup", "dance"}
	_, err := NewEngine(newTerritory(), p, DefaultRules(), chebyshev)
	assert.Error(t, err)

	p.Ranking = []string{"pickup", "pickup"}
	_, err = NewEngine(newTerritory(), p, DefaultRules(), chebyshev)
	assert.Error(t, err)
}
