package multiplayer

import (
	"context"

	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
)

// Offline is the Network used when no relay is configured. It never
// connects, so online play is unavailable and local play is unaffected.
type Offline struct{}

func (Offline) Connect(context.Context) error { return ErrNotConfigured }

func (Offline) JoinOrCreateMatch(context.Context, MatchOptions) (MatchInfo, error) {
	return MatchInfo{}, ErrNotConfigured
}

func (Offline) LeaveMatch() error { return nil }
func (Offline) SendInput(InputPayload) error { return ErrNotConnected }
func (Offline) SendState(hockey.State) error { return ErrNotConnected }
func (Offline) OnRemoteState(func(hockey.State)) func() { return func() {} }
func (Offline) OnRemoteInput(func(InputPayload)) func() { return func() {} }
func (Offline) OnWaiting(func(string)) func() { return func() {} }
func (Offline) OnMatchEnded(func(MatchEnd)) func() { return func() {} }
func (Offline) Connected() bool { return false }
func (Offline) InMatch() bool { return false }
func (Offline) LocalActor() core.PlayerID { return core.PlayerNone }
func (Offline) Close() error { return nil }

var _ Network = Offline{}
