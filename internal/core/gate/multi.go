package gate

import "context"

// Target pairs a name with its prober and classifier.
type Target struct {
	Name       string
	Prober     Prober
	Classifier Classifier
}

// WaitAll gates each target in order with the same budget. The first failure
// stops the sequence; later targets are not probed.
func WaitAll(ctx context.Context, cfg Config, targets []Target, opts ...Option) error {
	for _, t := range targets {
		targetOpts := opts
		if t.Classifier != nil {
			targetOpts = append(append([]Option{}, opts...), WithClassifier(t.Classifier))
		}
		if err := New(t.Name, t.Prober, cfg, targetOpts...).Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
