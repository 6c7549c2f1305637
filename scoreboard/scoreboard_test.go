// File: scoreboard/scoreboard_test.go
package scoreboard

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/lguibr/pacarcade/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScoreboard(t *testing.T) (*Scoreboard, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.log")
	return New(path, utils.NewTestLogger(), utils.DefaultConfig().MaxClients), path
}

func TestAdd_IsIdempotentAndResetsScore(t *testing.T) {
	s, _ := newTestScoreboard(t)
	s.Update(1, 50)
	assert.True(t, s.Add(1))
	assert.Equal(t, 0, s.scores[1])
}

func TestAdd_RejectsOnceMaxClientsReached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.log")
	s := New(path, utils.NewTestLogger(), 2)

	assert.True(t, s.Add(1))
	assert.True(t, s.Add(2))
	assert.False(t, s.Add(3))
	_, tracked := s.scores[3]
	assert.False(t, tracked)

	// Idempotent re-add of an already-tracked id still succeeds at capacity.
	assert.True(t, s.Add(1))

	s.Remove(1)
	assert.True(t, s.Add(3))
}

func TestUpdate_InsertsIntoTopFiveInDescendingOrder(t *testing.T) {
	s, _ := newTestScoreboard(t)
	s.Update(1, 10)
	s.Update(2, 30)
	s.Update(3, 20)

	assert.Equal(t, entry{2, 30}, s.top[0])
	assert.Equal(t, entry{3, 20}, s.top[1])
	assert.Equal(t, entry{1, 10}, s.top[2])
	assert.Equal(t, entry{0, 0}, s.top[3])
}

func TestUpdate_NonPositiveScoreNeverEntersTopFive(t *testing.T) {
	s, _ := newTestScoreboard(t)
	s.Update(1, 0)
	s.Update(2, -5)
	assert.Equal(t, entry{0, 0}, s.top[0])
}

func TestUpdate_RaisingAnIncumbentScoreResorts(t *testing.T) {
	s, _ := newTestScoreboard(t)
	s.Update(1, 10)
	s.Update(2, 20)
	s.Update(1, 50)

	assert.Equal(t, entry{1, 50}, s.top[0])
	assert.Equal(t, entry{2, 20}, s.top[1])
}

func TestUpdate_SixthEntryDoesNotDisplaceHigherScores(t *testing.T) {
	s, _ := newTestScoreboard(t)
	for id := 1; id <= 5; id++ {
		s.Update(id, id*10)
	}
	s.Update(6, 1) // lower than every incumbent
	for _, e := range s.top {
		assert.NotEqual(t, 6, e.id)
	}
}

func TestDump_WritesTopFiveInFormat(t *testing.T) {
	s, path := newTestScoreboard(t)
	s.Update(7, 99)
	s.Update(8, 5)

	require.NoError(t, s.Dump())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())

	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "=== TOP 5 CLIENTS ===", lines[0])
	assert.Equal(t, "Client 7: 99 points", lines[1])
	assert.Equal(t, "Client 8: 5 points", lines[2])
}

func TestDump_OverwritesPreviousContent(t *testing.T) {
	s, path := newTestScoreboard(t)
	s.Update(1, 1)
	require.NoError(t, s.Dump())

	s2, _ := newTestScoreboard(t)
	s2.logPath = path
	require.NoError(t, s2.Dump())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "=== TOP 5 CLIENTS ===\n", string(data))
}

func TestRemove_DoesNotEvictTopFiveEntry(t *testing.T) {
	s, _ := newTestScoreboard(t)
	s.Update(1, 100)
	s.Remove(1)
	assert.Equal(t, entry{1, 100}, s.top[0])
	_, stillCurrent := s.scores[1]
	assert.False(t, stillCurrent)
}
