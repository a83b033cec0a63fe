package grace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/guessparty/guessparty-go/internal/dependencies/mocks"
	"github.com/guessparty/guessparty-go/internal/testutil"
)

type ManagerSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	manager *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.manager = NewManager(s.clock, DefaultConfig(), testutil.NopLogger())
}

func (s *ManagerSuite) TestConsumeRejoinWithinWindow() {
	s.manager.TrackDisconnect("abcde", "player-1")

	s.clock.Advance(5 * time.Second)
	s.True(s.manager.ConsumeRejoin("abcde", "player-1"))
}

func (s *ManagerSuite) TestConsumeRejoinIsOneShot() {
	s.manager.TrackDisconnect("abcde", "player-1")

	s.True(s.manager.ConsumeRejoin("abcde", "player-1"))
	s.False(s.manager.ConsumeRejoin("abcde", "player-1"))
}

func (s *ManagerSuite) TestConsumeRejoinAfterWindowExpires() {
	s.manager.TrackDisconnect("abcde", "player-1")

	s.clock.Advance(11 * time.Second)
	s.False(s.manager.ConsumeRejoin("abcde", "player-1"))
}

func (s *ManagerSuite) TestConsumeRejoinUnknownPlayer() {
	s.False(s.manager.ConsumeRejoin("abcde", "player-1"))
}

func (s *ManagerSuite) TestConsumeRejoinDifferentLobby() {
	s.manager.TrackDisconnect("abcde", "player-1")

	s.False(s.manager.ConsumeRejoin("fghij", "player-1"))
	s.True(s.manager.ConsumeRejoin("abcde", "player-1"))
}

func (s *ManagerSuite) TestRepeatedDisconnectResetsWindow() {
	s.manager.TrackDisconnect("abcde", "player-1")

	s.clock.Advance(8 * time.Second)
	s.manager.TrackDisconnect("abcde", "player-1")

	// the original window would have expired by now
	s.clock.Advance(8 * time.Second)
	s.True(s.manager.ConsumeRejoin("abcde", "player-1"))
}

func (s *ManagerSuite) TestHasPendingDisconnects() {
	s.False(s.manager.HasPendingDisconnects("abcde"))

	s.manager.TrackDisconnect("abcde", "player-1")
	s.True(s.manager.HasPendingDisconnects("abcde"))
	s.False(s.manager.HasPendingDisconnects("fghij"))

	s.clock.Advance(11 * time.Second)
	s.False(s.manager.HasPendingDisconnects("abcde"))
}

func (s *ManagerSuite) TestEmptyCheckFiresAfterDelay() {
	fired := false
	s.manager.ScheduleEmptyCheck("abcde", func() { fired = true })

	s.clock.Advance(9 * time.Second)
	s.False(fired)

	s.clock.Advance(2 * time.Second)
	s.True(fired)
}

func (s *ManagerSuite) TestCancelEmptyCheck() {
	fired := false
	s.manager.ScheduleEmptyCheck("abcde", func() { fired = true })

	s.manager.CancelEmptyCheck("abcde")
	s.clock.Advance(20 * time.Second)
	s.False(fired)
}

func (s *ManagerSuite) TestScheduleEmptyCheckReplacesExisting() {
	firstFired := false
	secondFired := false
	s.manager.ScheduleEmptyCheck("abcde", func() { firstFired = true })

	s.clock.Advance(5 * time.Second)
	s.manager.ScheduleEmptyCheck("abcde", func() { secondFired = true })

	s.clock.Advance(6 * time.Second)
	s.False(firstFired)

	s.clock.Advance(5 * time.Second)
	s.True(secondFired)
}

func (s *ManagerSuite) TestCancelCheckFiresAfterDelay() {
	fired := false
	s.manager.ScheduleCancelCheck("abcde", func() { fired = true })

	s.clock.Advance(11 * time.Second)
	s.True(fired)
}

func (s *ManagerSuite) TestCancelCancelCheck() {
	fired := false
	s.manager.ScheduleCancelCheck("abcde", func() { fired = true })

	s.manager.CancelCancelCheck("abcde")
	s.clock.Advance(20 * time.Second)
	s.False(fired)
}

func (s *ManagerSuite) TestStopCancelsEverything() {
	fired := false
	s.manager.TrackDisconnect("abcde", "player-1")
	s.manager.ScheduleEmptyCheck("abcde", func() { fired = true })
	s.manager.ScheduleCancelCheck("abcde", func() { fired = true })

	s.manager.Stop()
	s.clock.Advance(time.Minute)
	s.False(fired)
	s.False(s.manager.ConsumeRejoin("abcde", "player-1"))
}
