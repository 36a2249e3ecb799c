package network

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hexaflex/intcode/cpu"
	"github.com/hexaflex/intcode/program"
)

// LinkCapacity is the number of values a link between two stages buffers.
const LinkCapacity = 64

// cancelCheckInterval is the number of steps a stage runs between
// context checks.
const cancelCheckInterval = 4096

// Pipeline runs a chain of machines, each in its own goroutine.
//
// Every stage runs a copy of the same program and is seeded with its phase
// value. The outputs of stage i are the inputs of stage i+1. With Loop set,
// the outputs of the last stage are fed back into the first one.
type Pipeline struct {
	Program program.Program
	Phases  []int64
	Loop    bool
	Options []cpu.Option // Applied to every stage.
	Log     *slog.Logger
}

// Run feeds input to the first stage and runs all stages until they halt.
// It returns the last value produced by the last stage.
func (pl *Pipeline) Run(ctx context.Context, input int64) (int64, error) {
	if len(pl.Phases) == 0 {
		return 0, errors.New("pipeline: no stages")
	}

	log := pl.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	// links[i] feeds stage i; links[n] carries the output of the last stage.
	n := len(pl.Phases)
	links := make([]chan int64, n+1)
	for i := range links {
		links[i] = make(chan int64, LinkCapacity)
	}

	firstDone := make(chan struct{})
	g, ctx := errgroup.WithContext(ctx)

	for i, phase := range pl.Phases {
		seed := []int64{phase}
		if i == 0 {
			seed = append(seed, input)
		}

		opts := append([]cpu.Option{}, pl.Options...)
		opts = append(opts, cpu.WithInput(seed...))

		st := &stage{
			index: i,
			cpu:   cpu.New(pl.Program, opts...),
			in:    links[i],
			out:   links[i+1],
			log:   log,
		}

		if i == 0 {
			st.done = firstDone
		}

		g.Go(func() error { return st.run(ctx) })
	}

	if !pl.Loop {
		close(links[0])
	}

	var last int64
	var seen bool

	g.Go(func() error {
		if pl.Loop {
			defer close(links[0])
		}

		for {
			select {
			case v, ok := <-links[n]:
				if !ok {
					return nil
				}

				last, seen = v, true
				if !pl.Loop {
					continue
				}

				select {
				case links[0] <- v:
				case <-firstDone:
				case <-ctx.Done():
					return ctx.Err()
				}

			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}

	if !seen {
		return 0, ErrNoOutput
	}

	return last, nil
}

// stage drives a single machine of a pipeline.
type stage struct {
	index int
	cpu   *cpu.CPU
	in    <-chan int64
	out   chan<- int64
	done  chan struct{} // Closed when the stage exits, if set.
	log   *slog.Logger
}

// run steps the machine until it halts. The output link is only closed on
// HALT; on failure the group context stops the other stages. A halted stage
// keeps draining its input so the upstream stage can run to completion.
func (s *stage) run(ctx context.Context) error {
	if s.done != nil {
		defer close(s.done)
	}

	for steps := 1; ; steps++ {
		action, err := s.cpu.Step()
		if err != nil {
			return errors.Wrapf(err, "stage %d", s.index)
		}

		switch action.Kind {
		case cpu.None:
			if steps%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

		case cpu.Output:
			select {
			case s.out <- action.Value:
			case <-ctx.Done():
				return ctx.Err()
			}

		case cpu.RequiresInput:
			select {
			case v, ok := <-s.in:
				if !ok {
					return errors.Wrapf(ErrStarved, "stage %d", s.index)
				}
				s.cpu.PushInput(v)
			case <-ctx.Done():
				return ctx.Err()
			}

		case cpu.Halt:
			s.log.Debug("stage halted", "stage", s.index)
			close(s.out)
			s.drain(ctx)
			return nil
		}
	}
}

// drain discards values sent to a halted stage until its input link is
// closed or the context is done.
func (s *stage) drain(ctx context.Context) {
	var dropped int
	defer func() {
		if dropped > 0 {
			s.log.Debug("stage dropped input", "stage", s.index, "values", dropped)
		}
	}()

	for {
		select {
		case _, ok := <-s.in:
			if !ok {
				return
			}
			dropped++
		case <-ctx.Done():
			return
		}
	}
}
