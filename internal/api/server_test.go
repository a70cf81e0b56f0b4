package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/talgya/colony/internal/config"
	"github.com/talgya/colony/internal/engine"
	"github.com/talgya/colony/internal/persistence"
	"github.com/talgya/colony/internal/territory"
	"github.com/talgya/colony/internal/world"
)

const home world.RoomName = "Q0R0"

// newColony returns a colony that has spawned one miner.
func newColony(t *testing.T) *engine.Colony {
	t.Helper()
	spawn := engine.NewStructure("spawn", territory.KindSpawn, world.Pos{Room: home, X: 10, Y: 10})
	spawn.Energy = spawn.EnergyCapacity
	tr := &territory.Territory{
		Name:            home,
		Controller:      &territory.Controller{ID: "ctl", Pos: world.Pos{Room: home, X: 25, Y: 25}, Level: 2, Owned: true},
		Structures:      []*territory.Structure{spawn},
		Sources:         []*territory.Source{{ID: "src", Pos: world.Pos{Room: home, X: 20, Y: 10}, Capacity: territory.SourceCapacity}},
		EnergyAvailable: spawn.Energy,
		EnergyCapacity:  spawn.EnergyCapacity,
	}
	econ := config.EconomyConfig{Normal: config.DefaultParams(), Incubating: config.DefaultIncubatingParams()}
	c, err := engine.NewColony([]*territory.Territory{tr}, econ, world.PathFunc(world.Chebyshev))
	require.NoError(t, err)
	c.RunCycle(1)
	return c
}

func get(t *testing.T, h http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestStatusAndTerritories(t *testing.T) {
	h := (&Server{Colony: newColony(t)}).Handler()

	var status map[string]any
	rec := get(t, h, "/api/v1/status", &status)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.EqualValues(t, 1, status["cycle"])
	assert.EqualValues(t, 1, status["agents"])

	var territories []engine.TerritorySummary
	get(t, h, "/api/v1/territories", &territories)
	require.Len(t, territories, 1)
	assert.Equal(t, home, territories[0].Name)
	assert.True(t, territories[0].HasSpawn)
}

func TestTerritoryDetail(t *testing.T) {
	h := (&Server{Colony: newColony(t)}).Handler()

	var detail struct {
		Summary engine.TerritorySummary `json:"summary"`
		Agents  []map[string]any        `json:"agents"`
	}
	rec := get(t, h, "/api/v1/territory/Q0R0", &detail)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, home, detail.Summary.Name)
	require.Len(t, detail.Agents, 1)
	assert.Equal(t, "miner", detail.Agents[0]["role"])

	rec = get(t, h, "/api/v1/territory/Q9R9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDirectives(t *testing.T) {
	c := newColony(t)

	var builds []engine.BuildRecord
	get(t, (&Server{Colony: c}).Handler(), "/api/v1/directives", &builds)
	require.Len(t, builds, 1)
	assert.Equal(t, "miner", string(builds[0].Role))

	db, err := persistence.Open(filepath.Join(t.TempDir(), "colony.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.SaveColonyState(c))

	builds = nil
	get(t, (&Server{Colony: c, DB: db}).Handler(), "/api/v1/directives?limit=5", &builds)
	require.Len(t, builds, 1)
	assert.True(t, builds[0].Spawned)
}

func TestEventsFilter(t *testing.T) {
	h := (&Server{Colony: newColony(t)}).Handler()

	var events []engine.Event
	get(t, h, "/api/v1/events", &events)
	require.Len(t, events, 1)
	assert.Equal(t, "spawn", events[0].Category)

	events = nil
	rec := get(t, h, "/api/v1/events?territory=Q5R5", &events)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	h := (&Server{Colony: newColony(t), RateLimit: 2}).Handler()

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(t, h, "/api/v1/status", nil).Code)
	}
	rec := get(t, h, "/api/v1/status", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 61, rl.RetryAfter("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
}

func TestClientAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientAddr(r))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	assert.Equal(t, "1.2.3.4", clientAddr(r))
}

func TestServerStartShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := &Server{Colony: newColony(t), Port: 0}
	s.Start()
	require.NoError(t, s.Shutdown(context.Background()))
}
