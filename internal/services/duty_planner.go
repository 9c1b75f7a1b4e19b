package services

import (
	"container/heap"

	"github.com/aasl/gate-duty-backend/internal/models"
)

// Fixed slot layout for one month of gate duty. Six duty days a week,
// three gates, two seats per gate: 36 assignments fill a month.
var (
	dutyWeekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	dutyGates    = []string{"Gate A", "Gate B", "Gate C"}
)

const (
	seatsPerGate = 2

	// priorityCeiling is the counter value at which a staff member stops
	// receiving seats for the rest of the run.
	priorityCeiling = 3
)

// PlannedAssignment is one filled slot, in layout order
type PlannedAssignment struct {
	Weekday   string
	Gate      string
	StaffID   string
	StaffName string
}

// DutyPlan is the outcome of one planning pass over the eligible pool
type DutyPlan struct {
	Assignments   []PlannedAssignment
	ScheduledDays map[string][]models.DutyAssignment
	ShortageDays  []string
	Updated       []*models.Staff // staff whose counter changed, in fetch order
}

// dutyCandidate pairs an eligible staff member with the position the
// storage fetch returned them in, which is the tie-break key.
type dutyCandidate struct {
	staff      *models.Staff
	fetchOrder int
}

// candidateQueue is a min-heap keyed by (priority_count, fetch order)
type candidateQueue []*dutyCandidate

func (q candidateQueue) Len() int { return len(q) }

func (q candidateQueue) Less(i, j int) bool {
	if q[i].staff.PriorityCount != q[j].staff.PriorityCount {
		return q[i].staff.PriorityCount < q[j].staff.PriorityCount
	}
	return q[i].fetchOrder < q[j].fetchOrder
}

func (q candidateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *candidateQueue) Push(x interface{}) {
	*q = append(*q, x.(*dutyCandidate))
}

func (q *candidateQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// PlanMonthlyDuty fills the month's slot layout from the eligible staff pool.
//
// Selection is progressive: the staff member with the lowest priority count
// takes the next seat, their counter is incremented immediately, and the
// pool is re-ranked before the following seat is filled. Ties go to the
// earlier fetch position. When every remaining candidate has reached the
// ceiling the pool is exhausted; the current weekday stops filling and it
// plus every later weekday is reported as a shortage day.
//
// Counters are mutated in place on the passed staff records. The planner
// performs no I/O; persisting the plan is the caller's job.
func PlanMonthlyDuty(eligible []*models.Staff) DutyPlan {
	plan := DutyPlan{
		ScheduledDays: make(map[string][]models.DutyAssignment),
		ShortageDays:  []string{},
	}

	initial := make([]int, len(eligible))
	queue := make(candidateQueue, 0, len(eligible))
	for i, s := range eligible {
		initial[i] = s.PriorityCount
		queue = append(queue, &dutyCandidate{staff: s, fetchOrder: i})
	}
	heap.Init(&queue)

	for _, day := range dutyWeekdays {
		dayShort := false

		for _, gate := range dutyGates {
			for seat := 0; seat < seatsPerGate; seat++ {
				if queue.Len() == 0 || queue[0].staff.PriorityCount >= priorityCeiling {
					dayShort = true
					break
				}

				next := heap.Pop(&queue).(*dutyCandidate)
				next.staff.PriorityCount++
				heap.Push(&queue, next)

				plan.Assignments = append(plan.Assignments, PlannedAssignment{
					Weekday:   day,
					Gate:      gate,
					StaffID:   next.staff.StaffID,
					StaffName: next.staff.StaffName,
				})
				plan.ScheduledDays[day] = append(plan.ScheduledDays[day], models.DutyAssignment{
					StaffID: next.staff.StaffID,
					Name:    next.staff.StaffName,
					Gate:    gate,
				})
			}
			if dayShort {
				break
			}
		}

		if dayShort {
			plan.ShortageDays = append(plan.ShortageDays, day)
		}
	}

	for i, s := range eligible {
		if s.PriorityCount != initial[i] {
			plan.Updated = append(plan.Updated, s)
		}
	}

	return plan
}
