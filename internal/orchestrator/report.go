package orchestrator

import (
	"fmt"

	"github.com/hochfrequenz/auto-reviewer/internal/domain"
	"github.com/hochfrequenz/auto-reviewer/internal/notify"
)

// notifyResult sends one terminal notification per run. Delivery
// failures are logged and otherwise ignored.
func (o *Orchestrator) notifyResult(item domain.WorkItem, res domain.RunResult) {
	if o.Notifier == nil {
		return
	}

	n := notify.Notification{
		Mode:  item.Name,
		PRURL: res.PRURL,
	}

	switch res.Outcome {
	case domain.OutcomeMerged:
		n.Type = notify.NotifySuccess
		n.Title = "Auto-Review Merged"
		n.Message = fmt.Sprintf("Approved after %d review iteration(s).", res.Iterations)
	case domain.OutcomeAwaitingManualMerge:
		n.Type = notify.NotifySuccess
		n.Title = "Auto-Review: PR Ready"
		n.Message = fmt.Sprintf("Approved after %d review iteration(s). Ready for manual merge.", res.Iterations)
	case domain.OutcomeExhausted:
		n.Type = notify.NotifyWarning
		n.Title = "Auto-Review: Max Iterations Reached"
		n.Message = fmt.Sprintf("PR not approved after %d fix round(s). Left open for manual review.", res.Iterations)
	case domain.OutcomeNoChanges:
		n.Type = notify.NotifyInfo
		n.Title = "Auto-Review Complete"
		n.Message = fmt.Sprintf("No changes produced for %s. Code looks good!", item.Name)
	default:
		n.Type = notify.NotifyError
		n.Title = "Auto-Review Failed"
		n.Message = res.Error
		if n.Message == "" {
			n.Message = "Run failed."
		}
	}

	if err := o.Notifier.Send(n); err != nil {
		o.logf("warning: sending notification: %v", err)
	}
}
