package discovery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/geteduroam/discogen/pkg/logging"
	"github.com/geteduroam/discogen/pkg/models"
	"github.com/geteduroam/discogen/pkg/seq"
)

// Publisher generates every strategy under the sequence lock and advances the
// sequence number only when a document changed.
type Publisher struct {
	counter    *seq.Counter
	writer     *Writer
	strategies []Strategy
	force      bool
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithForce advances the sequence number even when nothing changed.
func WithForce(force bool) PublisherOption {
	return func(p *Publisher) {
		p.force = force
	}
}

// NewPublisher returns a publisher writing through w.
func NewPublisher(counter *seq.Counter, w *Writer, strategies []Strategy, opts ...PublisherOption) *Publisher {
	p := &Publisher{counter: counter, writer: w, strategies: strategies}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes a publish run.
type Result struct {
	PreviousSeq int
	Seq         int
	Changed     bool
	Forced      bool
	// Files are the files kept on disk for Seq. Empty when nothing was published.
	Files []string
	// Instances is the size of the largest institution list generated.
	Instances int
}

// Published reports whether the sequence number advanced.
func (r Result) Published() bool {
	return r.Seq != r.PreviousSeq
}

// Publish runs one read-generate-compare-write cycle.
func (p *Publisher) Publish(ctx context.Context) (Result, error) {
	log := logging.FromContext(ctx)
	var res Result

	final, err := p.counter.Advance(ctx, func(current, next int) (bool, error) {
		res.PreviousSeq = current

		var candidates []File
		var written []string
		cleanup := func() error {
			var errs []error
			for _, f := range candidates {
				errs = append(errs, p.writer.Remove(f, next))
			}
			return errors.Join(errs...)
		}

		for _, s := range p.strategies {
			files, err := s.Generate(ctx, next)
			if err != nil {
				return false, errors.Join(fmt.Errorf("generate v%d: %w", s.Version(), err), cleanup())
			}
			for _, f := range files {
				candidates = append(candidates, f)
				paths, err := p.writer.Write(f, next)
				written = append(written, paths...)
				if err != nil {
					return false, errors.Join(err, cleanup())
				}
				changed, err := p.writer.ChangedSince(f, current, next)
				if err != nil {
					return false, errors.Join(err, cleanup())
				}
				if changed {
					log.Debug("document changed", zap.String("file", f.Name(next)))
				}
				res.Changed = res.Changed || changed
				res.Instances = max(res.Instances, instanceCount(f.Doc))
			}
		}

		if !res.Changed && !p.force {
			log.Info("no changes, discarding candidate", zap.Int("seq", next))
			return false, cleanup()
		}
		res.Forced = !res.Changed
		res.Files = written
		return true, nil
	})
	res.Seq = final
	if err != nil {
		return res, err
	}
	if res.Published() {
		log.Info("published discovery", zap.Int("seq", res.Seq), zap.Bool("forced", res.Forced))
	}
	return res, nil
}

func instanceCount(doc any) int {
	switch d := doc.(type) {
	case models.Document:
		return len(d.Instances)
	case models.DocumentV2:
		return len(d.Instances)
	}
	return 0
}
