package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/smart-review/smart-review-cli/internal/routing"
	"github.com/smart-review/smart-review-cli/internal/signal"
	"github.com/smart-review/smart-review-cli/internal/ui"
	"github.com/smart-review/smart-review-cli/internal/workflow"
	"github.com/spf13/cobra"
)

const schedulingPath = "/admin/scheduling"

var (
	schedulePeriod  int
	scheduleForce   bool
	scheduleApprove bool
	scheduleReject  string
	regenerateSlot  int
	regenerateGroup int
	regenerateWhy   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Review scheduling",
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a review schedule and approve, reject or regenerate it",
	Long: `Runs the scheduling algorithm for a review period and shows the result,
including the diagnostics of an incomplete run. With --approve or --reject the
decision is taken without prompting; in a terminal you are asked what to do.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schedulePeriod <= 0 {
			return errors.New("--period is required")
		}
		if scheduleApprove && scheduleReject != "" {
			return errors.New("--approve and --reject are mutually exclusive")
		}

		a, err := commonSetUp(cmd)
		if err != nil {
			return err
		}
		nav, err := a.enter(schedulingPath)
		if err != nil {
			return err
		}
		defer nav.Close()

		ctx, cancel := context.WithCancel(a.ctx)
		defer cancel()

		sessionsChanged := signal.New("sessions-changed")
		refresh := false
		sessionsChanged.Subscribe(func() { refresh = true })

		ctrl := workflow.NewController(a.svc.Scheduling, sessionsChanged, a.log)
		defer ctrl.Close()

		// Leaving the screen, e.g. because the session was invalidated,
		// abandons the run.
		nav.Watch(func(path string) {
			if path != schedulingPath {
				ctrl.Close()
				cancel()
			}
		})

		run := &scheduleRun{ctx: ctx, ctrl: ctrl, nav: nav, out: cmd.OutOrStdout(), period: schedulePeriod}

		err = ctrl.Generate(ctx, schedulePeriod, scheduleForce)
		if err := run.interrupted(); err != nil {
			return err
		}
		if err != nil && ctrl.Snapshot().Result == nil {
			return explain(err)
		}
		run.show(nil)

		switch {
		case scheduleApprove:
			err = run.do(ui.ActionApprove)
		case scheduleReject != "":
			err = ctrl.Reject(ctx, schedulePeriod, scheduleReject)
			run.show(err)
		case regenerateSlot > 0:
			err = ctrl.RegenerateSlot(ctx, regenerateSlot, regenerateWhy)
			run.show(err)
		case regenerateGroup > 0:
			err = ctrl.RegenerateGroup(ctx, regenerateGroup, regenerateWhy)
			run.show(err)
		case interactive():
			err = run.prompt()
		default:
			if ctrl.Snapshot().State == workflow.GeneratedFailure {
				err = errors.New("schedule is incomplete")
			}
		}
		if ierr := run.interrupted(); ierr != nil {
			return ierr
		}
		if err != nil {
			return explain(err)
		}

		if refresh {
			sessions, err := a.svc.Sessions.Scheduled(a.ctx, schedulePeriod)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(run.out, ui.Sessions(sessions))
		}
		return nil
	},
}

type scheduleRun struct {
	ctx    context.Context
	ctrl   *workflow.Controller
	nav    *routing.Navigator
	out    io.Writer
	period int
}

func (r *scheduleRun) show(err error) {
	snap := r.ctrl.Snapshot()
	fmt.Fprintln(r.out, ui.Snapshot(snap))
	if err != nil && err != snap.Err {
		fmt.Fprintln(r.out, ui.Error(err))
	}
}

// interrupted reports a session lost while the screen was open.
func (r *scheduleRun) interrupted() error {
	if current := r.nav.Current(); current != schedulingPath {
		return screenError(schedulingPath, current)
	}
	return nil
}

// prompt asks for decisions until the run is approved, rejected or the
// user quits.
func (r *scheduleRun) prompt() error {
	for {
		action, err := chooseAction(r.ctrl.Snapshot().State)
		if err != nil {
			return err
		}
		if action == ui.ActionQuit {
			return nil
		}
		if action == ui.ActionApprove {
			ok, err := confirm("Approve this schedule and publish its sessions?")
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}

		err = r.do(action)
		if ierr := r.interrupted(); ierr != nil {
			return ierr
		}
		if errors.Is(err, workflow.ErrClosed) {
			return err
		}

		if snap := r.ctrl.Snapshot(); snap.Outcome != workflow.NoOutcome {
			return nil
		}
	}
}

func (r *scheduleRun) do(action ui.Action) error {
	var err error

	switch action {
	case ui.ActionApprove:
		err = r.ctrl.Approve(r.ctx, r.period)
	case ui.ActionReject:
		reason := scheduleReject
		if reason == "" {
			if reason, err = ui.Reason("Why is this schedule rejected?", true); err != nil {
				return err
			}
		}
		err = r.ctrl.Reject(r.ctx, r.period, reason)
	case ui.ActionRegenerate:
		err = r.ctrl.Generate(r.ctx, r.period, true)
	case ui.ActionRegenerateSlot, ui.ActionRegenerateGroup:
		err = r.regeneratePart(action)
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	r.show(err)
	return err
}

func (r *scheduleRun) regeneratePart(action ui.Action) error {
	target := "Slot"
	if action == ui.ActionRegenerateGroup {
		target = "Group"
	}
	id, err := ui.ID(target + " id")
	if err != nil {
		return err
	}
	reason, err := ui.Reason("Reason (optional)", false)
	if err != nil {
		return err
	}

	if action == ui.ActionRegenerateSlot {
		return r.ctrl.RegenerateSlot(r.ctx, id, reason)
	}
	return r.ctrl.RegenerateGroup(r.ctx, id, reason)
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)

	f := scheduleRunCmd.Flags()
	f.IntVar(&schedulePeriod, "period", 0, "review period id")
	f.BoolVar(&scheduleForce, "force", false, "regenerate even if a schedule exists")
	f.BoolVar(&scheduleApprove, "approve", false, "approve the generated schedule")
	f.StringVar(&scheduleReject, "reject", "", "reject the generated schedule with this reason")
	f.IntVar(&regenerateSlot, "regenerate-slot", 0, "regenerate this slot after generating")
	f.IntVar(&regenerateGroup, "regenerate-group", 0, "regenerate this group after generating")
	f.StringVar(&regenerateWhy, "reason", "", "reason for a slot or group regeneration")
}
