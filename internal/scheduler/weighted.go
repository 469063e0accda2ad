package scheduler

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/specialistvlad/wfplan/internal/ctxlog"
	"github.com/specialistvlad/wfplan/internal/job"
)

// MaxWeight is the upper bound of a workflow's preference weight.
const MaxWeight = 10

// Weighted plans one workflow at a time, in the order the workflows were
// added. Resource timelines and execution numbers carry over from one
// workflow to the next. There is no gating across workflows.
//
// Performance jobs go to the earliest start, energy jobs to the lowest base
// power times duration; balanced jobs use the selector configured for their
// class.
type Weighted struct{}

func (Weighted) Name() string { return "weighted" }

// Priority is the mean duration of j across resources, scaled by its
// preference: up by w/10 for performance, down by w/20 for energy.
func (Weighted) Priority(r *Run, j *job.Job) (float64, error) {
	if j.Weight < 0 || j.Weight > MaxWeight {
		return 0, fmt.Errorf("job %s: preference weight %v outside [0,%d]", j.ID, j.Weight, MaxWeight)
	}
	var sum float64
	for _, res := range r.Resources() {
		sum += r.Duration(j, res)
	}
	base := sum / float64(len(r.Resources()))

	switch j.Preference {
	case job.Performance:
		return base * (1 + j.Weight/10), nil
	case job.Energy:
		return base * (1 - j.Weight/20), nil
	default:
		return base, nil
	}
}

func (w Weighted) selector(r *Run, p job.Preference) ResourceSelector {
	switch p {
	case job.Performance:
		return EarliestStart{}
	case job.Energy:
		return MinimumPowerTime{}
	default:
		return r.SelectorFor(p)
	}
}

func (w Weighted) Schedule(ctx context.Context, r *Run) error {
	all := r.Graph().Jobs(ctx)
	for _, wf := range r.Graph().Workflows(ctx) {
		var jobs []*job.Job
		for _, j := range all {
			if j.WorkflowID == wf.ID {
				jobs = append(jobs, j)
			}
		}
		if err := w.scheduleWorkflow(ctx, r, jobs); err != nil {
			return fmt.Errorf("workflow %s: %w", wf.ID, err)
		}
		ctxlog.FromContext(ctx).Debug("Workflow planned.", "workflow", wf.ID, "jobs", len(jobs))
	}
	return nil
}

func (w Weighted) scheduleWorkflow(ctx context.Context, r *Run, jobs []*job.Job) error {
	q := &readyQueue{}
	queued := make(map[*job.Job]bool, len(jobs))
	members := make(map[*job.Job]bool, len(jobs))
	for _, j := range jobs {
		members[j] = true
	}

	push := func(j *job.Job) error {
		ok, err := w.isReady(ctx, r, j)
		if err != nil || !ok || queued[j] {
			return err
		}
		p, err := w.Priority(r, j)
		if err != nil {
			return err
		}
		queued[j] = true
		heap.Push(q, &queueItem{job: j, priority: p, seq: len(queued)})
		return nil
	}

	for _, j := range jobs {
		if err := push(j); err != nil {
			return err
		}
	}

	for q.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		j := heap.Pop(q).(*queueItem).job

		c, err := r.Place(ctx, j, w.selector(r, j.Preference))
		if err != nil {
			return err
		}
		if err := r.Assign(ctx, j, c); err != nil {
			return err
		}

		children, err := r.Graph().ChildrenOf(ctx, j.ID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if members[child] {
				if err := push(child); err != nil {
					return err
				}
			}
		}
	}

	var pending []*job.Job
	for _, j := range jobs {
		if !j.Scheduled() {
			pending = append(pending, j)
		}
	}
	if len(pending) > 0 {
		return unschedulable(pending)
	}
	return nil
}

func (Weighted) isReady(ctx context.Context, r *Run, j *job.Job) (bool, error) {
	if j.Scheduled() {
		return false, nil
	}
	parents, err := r.Graph().ParentsOf(ctx, j.ID)
	if err != nil {
		return false, err
	}
	for _, p := range parents {
		if !p.Scheduled() {
			return false, nil
		}
	}
	return true, nil
}

type queueItem struct {
	job      *job.Job
	priority float64
	seq      int
}

// readyQueue is a max-heap on priority; equal priorities pop in push order.
type readyQueue []*queueItem

func (q readyQueue) Len() int { return len(q) }

func (q readyQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) { *q = append(*q, x.(*queueItem)) }

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
