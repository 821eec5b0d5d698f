package chat

import (
	"context"

	"github.com/google/uuid"
)

// ActiveCountFunc reports how many AGENT-status conversations are
// currently assigned to the given agent.
type ActiveCountFunc func(ctx context.Context, agentID uuid.UUID) (int, error)

type routerScore struct {
	loadRatio float64
	active    int
}

func (s routerScore) less(other routerScore) bool {
	if s.loadRatio != other.loadRatio {
		return s.loadRatio < other.loadRatio
	}
	return s.active < other.active
}

// PickAgent selects the least-loaded agent from the online pool. Agents
// at or over MaxActiveChats are excluded. Ties on (load ratio, active
// count) keep the first agent encountered, so the caller's input order is
// the final tie-break. Returns ErrNoAgentAvailable when no agent is
// eligible; callers must treat that as "queue unassigned", not a failure.
//
// The router is never consulted for a conversation that already has an
// assignee: assignment is sticky and only an explicit unassignment
// triggers a fresh pick.
func PickAgent(ctx context.Context, online []*Agent, activeCount ActiveCountFunc) (*Agent, error) {
	if len(online) == 0 {
		return nil, ErrNoAgentAvailable
	}

	var (
		best      *Agent
		bestScore routerScore
	)

	for _, agent := range online {
		if agent.Presence != PresenceOnline {
			continue
		}

		active, err := activeCount(ctx, agent.ID)
		if err != nil {
			return nil, err
		}

		maxChats := agent.MaxActiveChats
		if maxChats < 1 {
			maxChats = 1
		}
		if active >= maxChats {
			continue
		}

		score := routerScore{
			loadRatio: float64(active) / float64(maxChats),
			active:    active,
		}
		if best == nil || score.less(bestScore) {
			best = agent
			bestScore = score
		}
	}

	if best == nil {
		return nil, ErrNoAgentAvailable
	}
	return best, nil
}
