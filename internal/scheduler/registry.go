package scheduler

import "sync"

// Registry indexes live jobs by user. It is partitioned: operations on
// different users never block each other, while operations on the same user
// are serialized so two concurrent reschedules cannot interleave their
// cancel and arm phases and leak duplicate timers. Entries whose job list
// empties are removed, so user churn does not grow the map without bound.
type Registry struct {
	mu    sync.Mutex
	users map[string]*userJobs
}

type userJobs struct {
	mu   sync.Mutex
	jobs []*Job
	// gone marks an entry pruned from the map; a goroutine that fetched the
	// pointer before the prune must not arm jobs into it.
	gone bool
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*userJobs)}
}

// entry returns the user's job list with its lock held, creating it if
// needed. The caller must release e.mu.
func (r *Registry) entry(userID string) *userJobs {
	for {
		r.mu.Lock()
		e, ok := r.users[userID]
		if !ok {
			e = &userJobs{}
			r.users[userID] = e
		}
		r.mu.Unlock()

		e.mu.Lock()
		if !e.gone {
			return e
		}
		// Pruned between the map read and the lock, go again.
		e.mu.Unlock()
	}
}

// lookup is entry without the create: nil when the user has no jobs, so read
// and cancel paths cannot litter the map with empty entries.
func (r *Registry) lookup(userID string) *userJobs {
	for {
		r.mu.Lock()
		e, ok := r.users[userID]
		r.mu.Unlock()
		if !ok {
			return nil
		}

		e.mu.Lock()
		if !e.gone {
			return e
		}
		e.mu.Unlock()
	}
}

// pruneLocked drops the map entry once its job list is empty. Caller holds
// e.mu; taking r.mu here is safe because no path holds r.mu while waiting on
// an entry lock.
func (r *Registry) pruneLocked(userID string, e *userJobs) {
	if len(e.jobs) != 0 {
		return
	}
	e.gone = true
	r.mu.Lock()
	if r.users[userID] == e {
		delete(r.users, userID)
	}
	r.mu.Unlock()
}

// ReplaceAll cancels every existing job for the user, then arms and stores
// the new set. The cancel phase completes in full before any new job is
// armed, upholding the at-most-one-live-job-per-(reminder, weekday) invariant.
func (r *Registry) ReplaceAll(userID string, jobs []*Job) {
	e := r.entry(userID)
	defer e.mu.Unlock()

	for _, j := range e.jobs {
		j.Cancel()
	}
	for _, j := range jobs {
		j.arm()
	}
	e.jobs = jobs
	r.pruneLocked(userID, e)
}

// CancelReminder cancels the jobs for one reminder across all its weekdays,
// leaving the user's other reminders untouched. Unknown IDs are a no-op.
func (r *Registry) CancelReminder(userID, reminderID string) int {
	e := r.lookup(userID)
	if e == nil {
		return 0
	}
	defer e.mu.Unlock()

	kept := e.jobs[:0]
	cancelled := 0
	for _, j := range e.jobs {
		if j.ReminderID() == reminderID {
			j.Cancel()
			cancelled++
			continue
		}
		kept = append(kept, j)
	}
	e.jobs = kept
	r.pruneLocked(userID, e)
	return cancelled
}

// Clear cancels and removes every job for the user.
func (r *Registry) Clear(userID string) int {
	e := r.lookup(userID)
	if e == nil {
		return 0
	}
	defer e.mu.Unlock()

	cancelled := 0
	for _, j := range e.jobs {
		if j.Live() {
			cancelled++
		}
		j.Cancel()
	}
	e.jobs = nil
	r.pruneLocked(userID, e)
	return cancelled
}

// Live returns the number of jobs for the user that can still fire.
func (r *Registry) Live(userID string) int {
	e := r.lookup(userID)
	if e == nil {
		return 0
	}
	defer e.mu.Unlock()

	n := 0
	for _, j := range e.jobs {
		if j.Live() {
			n++
		}
	}
	return n
}

// Jobs returns a snapshot of the user's current job list.
func (r *Registry) Jobs(userID string) []*Job {
	e := r.lookup(userID)
	if e == nil {
		return nil
	}
	defer e.mu.Unlock()

	out := make([]*Job, len(e.jobs))
	copy(out, e.jobs)
	return out
}

// Shutdown cancels every job for every user.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	entries := make([]*userJobs, 0, len(r.users))
	for _, e := range r.users {
		entries = append(entries, e)
	}
	r.users = make(map[string]*userJobs)
	r.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		for _, j := range e.jobs {
			j.Cancel()
		}
		e.jobs = nil
		e.gone = true
		e.mu.Unlock()
	}
}
