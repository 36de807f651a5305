// Package sched is a cooperative run queue for logical threads whose steps
// are builtin operations. It honours the BuiltinResult protocol: a
// suspended step is parked on its dependency and re-invoked unchanged once
// the dependency is bound.
package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/mozart/vm"
)

var (
	// ErrDeadlock is returned by Run when threads remain parked but none
	// can make progress.
	ErrDeadlock = errors.New("sched: all threads are waiting")
	// ErrStepLimit is returned by Run when the configured step budget is spent.
	ErrStepLimit = errors.New("sched: step limit reached")
)

// Step is one retry-safe unit of work. It must not have observable side
// effects before returning a suspension.
type Step func(m *vm.VM) vm.BuiltinResult

// ThreadState is the lifecycle state of a thread.
type ThreadState int

const (
	ThreadRunnable ThreadState = iota
	ThreadParked
	ThreadTerminated
	ThreadCancelled
)

func (s ThreadState) String() string {
	switch s {
	case ThreadRunnable:
		return "runnable"
	case ThreadParked:
		return "parked"
	case ThreadTerminated:
		return "terminated"
	case ThreadCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("ThreadState(%d)", int(s))
}

// Thread is a logical thread: an ordered list of steps.
type Thread struct {
	ID   uuid.UUID
	Name string

	steps     []Step
	pc        int
	state     ThreadState
	waitingOn vm.Value
	raised    *vm.Value
	retries   int
}

// State returns the thread's current state.
func (t *Thread) State() ThreadState { return t.state }

// Retries returns how many times a step was re-invoked after its
// dependency became determined.
func (t *Thread) Retries() int { return t.retries }

// Raised returns the payload of the raise that ended the thread, if any.
func (t *Thread) Raised() (vm.Value, bool) {
	if t.raised == nil {
		return vm.Unit, false
	}
	return *t.raised, true
}

// Options configures a Scheduler.
type Options struct {
	// MaxSteps bounds the number of step invocations per Run. Zero means
	// unlimited.
	MaxSteps int
	Logger   commonlog.Logger
}

// Scheduler multiplexes threads over one VM. Run is not reentrant.
type Scheduler struct {
	vm       *vm.VM
	maxSteps int
	log      commonlog.Logger

	mu      sync.Mutex
	runq    []*Thread
	parked  map[vm.Value][]*Thread
	threads []*Thread
}

// New creates a scheduler and subscribes it to variable bindings in m.
func New(m *vm.VM, opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = commonlog.GetLogger("mozart.sched")
	}
	s := &Scheduler{
		vm:       m,
		maxSteps: opts.MaxSteps,
		log:      logger,
		parked:   make(map[vm.Value][]*Thread),
	}
	m.Store().OnBind(s.wake)
	return s
}

// Spawn queues a new thread.
func (s *Scheduler) Spawn(name string, steps ...Step) *Thread {
	t := &Thread{
		ID:    uuid.New(),
		Name:  name,
		steps: steps,
		state: ThreadRunnable,
	}
	s.mu.Lock()
	s.threads = append(s.threads, t)
	s.runq = append(s.runq, t)
	s.mu.Unlock()
	s.log.Debugf("spawned thread %s (%s)", t.Name, t.ID)
	return t
}

// Cancel stops t. A pending re-invocation of a parked step is discarded,
// and a thread cancelled from inside its own step runs no further steps.
func (s *Scheduler) Cancel(t *Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t.state {
	case ThreadParked:
		s.parked[t.waitingOn] = remove(s.parked[t.waitingOn], t)
		if len(s.parked[t.waitingOn]) == 0 {
			delete(s.parked, t.waitingOn)
		}
	case ThreadRunnable:
		s.runq = remove(s.runq, t)
	default:
		return
	}
	t.state = ThreadCancelled
}

// Threads returns every thread spawned so far.
func (s *Scheduler) Threads() []*Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Thread, len(s.threads))
	copy(out, s.threads)
	return out
}

// Parked returns the number of parked threads.
func (s *Scheduler) Parked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ts := range s.parked {
		n += len(ts)
	}
	return n
}

// Run executes runnable threads until none are left. It returns
// ErrDeadlock if threads are still parked at that point.
func (s *Scheduler) Run(ctx context.Context) error {
	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := s.next()
		if t == nil {
			if n := s.Parked(); n > 0 {
				return fmt.Errorf("%w (%d parked)", ErrDeadlock, n)
			}
			return nil
		}
		if s.maxSteps > 0 && steps >= s.maxSteps {
			s.requeue(t)
			return ErrStepLimit
		}
		steps++
		s.step(t)
	}
}

func (s *Scheduler) next() *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runq) == 0 {
		return nil
	}
	t := s.runq[0]
	s.runq = s.runq[1:]
	return t
}

func (s *Scheduler) requeue(t *Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runq = append([]*Thread{t}, s.runq...)
}

// step runs the thread's current step and acts on its result. The step
// itself runs without s.mu held so that it may bind variables or cancel
// threads.
func (s *Scheduler) step(t *Thread) {
	s.mu.Lock()
	if t.state == ThreadCancelled {
		s.mu.Unlock()
		return
	}
	if t.pc >= len(t.steps) {
		s.finishLocked(t)
		s.mu.Unlock()
		return
	}
	current := t.steps[t.pc]
	s.mu.Unlock()

	res := current(s.vm)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.state == ThreadCancelled {
		s.log.Debugf("thread %s cancelled while running", t.Name)
		return
	}
	switch res.Kind() {
	case vm.ResultContinue:
		t.pc++
		if t.pc >= len(t.steps) {
			s.finishLocked(t)
			return
		}
		s.runq = append(s.runq, t)
	case vm.ResultSuspend:
		// The dependency may have been bound, or linked to another
		// variable, between the step returning and now.
		dep, ok := s.vm.Deref(res.Dependency())
		if ok {
			t.retries++
			s.runq = append(s.runq, t)
			return
		}
		t.state = ThreadParked
		t.waitingOn = dep
		s.parked[dep] = append(s.parked[dep], t)
	case vm.ResultRaise:
		payload := res.Payload()
		t.raised = &payload
		s.log.Debugf("thread %s raised %s", t.Name, s.vm.Print(payload))
		s.finishLocked(t)
	}
}

func (s *Scheduler) finishLocked(t *Thread) {
	t.state = ThreadTerminated
	s.log.Debugf("thread %s terminated", t.Name)
}

// wake makes every thread parked on variable runnable again. If variable
// was only linked to another unbound variable the threads move over to
// wait on that one instead.
func (s *Scheduler) wake(variable vm.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	waiters := s.parked[variable]
	if len(waiters) == 0 {
		return
	}
	delete(s.parked, variable)
	if end, ok := s.vm.Deref(variable); !ok {
		for _, t := range waiters {
			t.waitingOn = end
		}
		s.parked[end] = append(s.parked[end], waiters...)
		return
	}
	for _, t := range waiters {
		t.state = ThreadRunnable
		t.waitingOn = vm.Unit
		t.retries++
		s.runq = append(s.runq, t)
	}
}

func remove(ts []*Thread, t *Thread) []*Thread {
	for i, x := range ts {
		if x == t {
			return append(ts[:i], ts[i+1:]...)
		}
	}
	return ts
}
