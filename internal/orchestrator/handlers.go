package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/Outreach/internal/domain"
	"github.com/shaiso/Outreach/internal/telemetry"
)

// handleSave сохраняет граф: IDLE → SAVING → PERSISTED | SAVE_FAILED.
func (o *Orchestrator) handleSave(ctx context.Context, g domain.Graph, state *RunState) error {
	if err := state.Transition(domain.SaveStateSaving); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return o.failSave(state, err)
	}

	o.logger.Debug("saving flow", "nodes", len(g.Nodes), "edges", len(g.Edges))

	if err := o.saver.SaveFlow(ctx, g); err != nil {
		return o.failSave(state, err)
	}

	return state.Transition(domain.SaveStatePersisted)
}

func (o *Orchestrator) failSave(state *RunState, cause error) error {
	if err := state.Transition(domain.SaveStateSaveFailed); err != nil {
		return err
	}
	return newPersistenceError(cause)
}

// handleSchedule планирует письма: PERSISTED → SCHEDULING → COMPLETED | SCHEDULE_FAILED.
//
// Момент отправки вычисляется для каждого письма отдельно, непосредственно
// перед его запросом.
func (o *Orchestrator) handleSchedule(ctx context.Context, g domain.Graph, state *RunState) error {
	if err := state.Transition(domain.SaveStateScheduling); err != nil {
		return err
	}

	for i, node := range g.EmailNodes() {
		logger := telemetry.WithNodeID(o.logger, node.ID)

		if err := ctx.Err(); err != nil {
			return o.failSchedule(state, node.ID, i, err)
		}

		sendAt, err := o.planner.PlanDispatch(node.ID, g)
		if err != nil {
			return o.failSchedule(state, node.ID, i, fmt.Errorf("plan %s: %w", node.ID, err))
		}

		req := domain.NewEmailRequest(node, sendAt)
		if err := o.scheduler.ScheduleEmail(ctx, req); err != nil {
			return o.failSchedule(state, node.ID, i, err)
		}

		state.MarkScheduled()
		telemetry.EmailsScheduledTotal.Inc()
		logger.Debug("email scheduled", "send_at", req.Time, "email", req.Email)
	}

	return state.Transition(domain.SaveStateCompleted)
}

func (o *Orchestrator) failSchedule(state *RunState, nodeID string, index int, cause error) error {
	if err := state.Transition(domain.SaveStateScheduleFailed); err != nil {
		return err
	}
	return newSchedulingError(nodeID, index, cause)
}
