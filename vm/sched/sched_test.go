package sched

import (
	"context"
	"errors"
	"testing"

	"github.com/chazu/mozart/vm"
)

func TestRunSequential(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	x := vm.NewVariable(m)
	y := vm.NewVariable(m)
	th := s.Spawn("main",
		Bind(x, vm.BuildSmallInt(m, 20)),
		Apply(y, x, "*", vm.BuildSmallInt(m, 2)),
	)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if th.State() != ThreadTerminated {
		t.Errorf("state = %s, want terminated", th.State())
	}
	if got, _ := m.Deref(y); got.SmallInt() != 40 {
		t.Errorf("y = %s, want 40", m.Print(got))
	}
}

func TestSuspendedStepResumes(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	x := vm.NewVariable(m)
	z := vm.NewVariable(m)

	consumer := s.Spawn("consumer", Apply(z, x, "+", vm.BuildSmallInt(m, 1)))
	producer := s.Spawn("producer", Bind(x, vm.BuildSmallInt(m, 42)))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, _ := m.Deref(z); got.SmallInt() != 43 {
		t.Errorf("z = %s, want 43", m.Print(got))
	}
	if consumer.Retries() != 1 {
		t.Errorf("consumer retries = %d, want 1", consumer.Retries())
	}
	if producer.Retries() != 0 {
		t.Errorf("producer retries = %d, want 0", producer.Retries())
	}
}

func TestManyWaitersWakeTogether(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	x := vm.NewVariable(m)
	outs := make([]vm.Value, 5)
	for i := range outs {
		outs[i] = vm.NewVariable(m)
		s.Spawn("waiter", Apply(outs[i], x, "~"))
	}

	// Run once so all waiters park.
	if err := s.Run(context.Background()); !errors.Is(err, ErrDeadlock) {
		t.Fatalf("Run before bind: %v, want ErrDeadlock", err)
	}
	if s.Parked() != len(outs) {
		t.Fatalf("parked = %d, want %d", s.Parked(), len(outs))
	}

	m.Bind(x, vm.BuildSmallInt(m, 3))
	if s.Parked() != 0 {
		t.Errorf("parked after bind = %d, want 0", s.Parked())
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run after bind: %v", err)
	}
	for _, o := range outs {
		if got, _ := m.Deref(o); got.SmallInt() != -3 {
			t.Errorf("waiter output = %s, want ~3", m.Print(got))
		}
	}
}

func TestDeadlock(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	x := vm.NewVariable(m)
	th := s.Spawn("stuck", Wait(x))

	err := s.Run(context.Background())
	if !errors.Is(err, ErrDeadlock) {
		t.Fatalf("Run = %v, want ErrDeadlock", err)
	}
	if th.State() != ThreadParked {
		t.Errorf("state = %s, want parked", th.State())
	}
}

func TestRaiseTerminatesThread(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	after := vm.NewVariable(m)
	th := s.Spawn("bad",
		Apply(vm.NewVariable(m), vm.BuildSmallInt(m, 1), "div", vm.BuildSmallInt(m, 0)),
		Bind(after, vm.Unit),
	)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	payload, ok := th.Raised()
	if !ok {
		t.Fatal("thread should have raised")
	}
	if got := m.Print(payload); got != "divisionByZero(1)" {
		t.Errorf("payload = %s", got)
	}
	if th.State() != ThreadTerminated {
		t.Errorf("state = %s, want terminated", th.State())
	}
	if _, ok := m.Deref(after); ok {
		t.Error("steps after a raise should not run")
	}
}

func TestCancelParkedThread(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	x := vm.NewVariable(m)
	out := vm.NewVariable(m)
	th := s.Spawn("cancelled", Apply(out, x, "~"))

	if err := s.Run(context.Background()); !errors.Is(err, ErrDeadlock) {
		t.Fatalf("Run = %v, want ErrDeadlock", err)
	}
	s.Cancel(th)
	if th.State() != ThreadCancelled {
		t.Fatalf("state = %s, want cancelled", th.State())
	}

	m.Bind(x, vm.BuildSmallInt(m, 1))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run after cancel: %v", err)
	}
	if _, ok := m.Deref(out); ok {
		t.Error("cancelled step was re-invoked")
	}

	// Cancelling twice is harmless.
	s.Cancel(th)
	if th.State() != ThreadCancelled {
		t.Error("second cancel changed state")
	}
}

func TestStepLimit(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{MaxSteps: 2})

	x := vm.NewVariable(m)
	s.Spawn("long",
		Bind(x, vm.BuildSmallInt(m, 1)),
		Wait(x),
		Wait(x),
		Wait(x),
	)
	if err := s.Run(context.Background()); !errors.Is(err, ErrStepLimit) {
		t.Fatalf("Run = %v, want ErrStepLimit", err)
	}
}

func TestRunHonoursContext(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})
	s.Spawn("idle", Wait(vm.Unit))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestThreadsHaveDistinctIDs(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})
	a := s.Spawn("a")
	b := s.Spawn("b")
	if a.ID == b.ID {
		t.Error("threads should get distinct IDs")
	}
	if len(s.Threads()) != 2 {
		t.Errorf("Threads() = %d, want 2", len(s.Threads()))
	}

	// Threads without steps terminate on their first turn.
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.State() != ThreadTerminated {
		t.Errorf("empty thread state = %s", a.State())
	}
}

func TestTryHandlesRaise(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	caught := vm.NewVariable(m)
	after := vm.NewVariable(m)
	th := s.Spawn("guarded",
		Try(
			Apply(vm.NewVariable(m), vm.BuildSmallInt(m, 1), "div", vm.BuildSmallInt(m, 0)),
			func(m *vm.VM, payload vm.Value) vm.BuiltinResult {
				return m.Bind(caught, payload)
			},
		),
		Bind(after, vm.Unit),
	)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, ok := th.Raised(); ok {
		t.Error("a handled raise should not end the thread")
	}
	if th.State() != ThreadTerminated {
		t.Errorf("state = %s, want terminated", th.State())
	}
	if got, _ := m.Deref(caught); m.Print(got) != "divisionByZero(1)" {
		t.Errorf("handler saw %s", m.Print(got))
	}
	if _, ok := m.Deref(after); !ok {
		t.Error("steps after a handled raise should run")
	}
}

func TestTryUnwindsToEnclosingHandler(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	reraise := func(m *vm.VM, payload vm.Value) vm.BuiltinResult {
		return vm.Raise(m.Atom("rethrown"))
	}
	divide := Apply(vm.NewVariable(m), vm.BuildSmallInt(m, 1), "div", vm.BuildSmallInt(m, 0))

	caught := vm.NewVariable(m)
	outer := s.Spawn("nested",
		Try(Try(divide, reraise), func(m *vm.VM, payload vm.Value) vm.BuiltinResult {
			return m.Bind(caught, payload)
		}),
	)
	after := vm.NewVariable(m)
	unhandled := s.Spawn("unhandled", Try(divide, reraise), Bind(after, vm.Unit))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := outer.Raised(); ok {
		t.Error("outer handler should have caught the rethrow")
	}
	if got, _ := m.Deref(caught); got != m.Atom("rethrown") {
		t.Errorf("outer handler saw %s", m.Print(got))
	}

	payload, ok := unhandled.Raised()
	if !ok || payload != m.Atom("rethrown") {
		t.Errorf("unhandled raise = %s, %v", m.Print(payload), ok)
	}
	if _, ok := m.Deref(after); ok {
		t.Error("steps after an unhandled raise should not run")
	}
}

func TestCancelFromOwnStep(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	after := vm.NewVariable(m)
	var th *Thread
	th = s.Spawn("self-cancel",
		func(m *vm.VM) vm.BuiltinResult {
			s.Cancel(th)
			return vm.Continue
		},
		Bind(after, vm.Unit),
	)

	x := vm.NewVariable(m)
	var parker *Thread
	parker = s.Spawn("cancel-then-suspend",
		func(m *vm.VM) vm.BuiltinResult {
			s.Cancel(parker)
			return vm.SuspendOn(x)
		},
	)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if th.State() != ThreadCancelled {
		t.Errorf("state = %s, want cancelled", th.State())
	}
	if _, ok := m.Deref(after); ok {
		t.Error("a cancelled thread ran its next step")
	}
	if parker.State() != ThreadCancelled || s.Parked() != 0 {
		t.Errorf("cancelled thread parked: state %s, parked %d", parker.State(), s.Parked())
	}
}

func TestLinkedVariableKeepsWaiting(t *testing.T) {
	m := vm.NewVM()
	s := New(m, Options{})

	x := vm.NewVariable(m)
	y := vm.NewVariable(m)
	out := vm.NewVariable(m)
	th := s.Spawn("waiter", Apply(out, x, "~"))

	if err := s.Run(context.Background()); !errors.Is(err, ErrDeadlock) {
		t.Fatalf("Run = %v, want ErrDeadlock", err)
	}

	m.Bind(x, y)
	if s.Parked() != 1 || th.State() != ThreadParked {
		t.Fatalf("after linking: parked %d, state %s", s.Parked(), th.State())
	}
	if th.Retries() != 0 {
		t.Errorf("linking counted as a retry: %d", th.Retries())
	}

	m.Bind(y, vm.BuildSmallInt(m, 4))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, _ := m.Deref(out); got.SmallInt() != -4 {
		t.Errorf("out = %s, want ~4", m.Print(got))
	}
	if th.Retries() != 1 {
		t.Errorf("retries = %d, want 1", th.Retries())
	}
}
