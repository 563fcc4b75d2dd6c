/*
Package resilience provides a circuit breaker for host integrations that can
fail repeatedly, such as launching the platform file opener on a machine
without a desktop session.

# Usage

	b := resilience.New("opener", resilience.Settings{
		Threshold: 3,
		Cooldown:  30 * time.Second,
	})

	err := b.Do(ctx, func(ctx context.Context) error {
		return opener.Open(ctx, target)
	})
	if errors.Is(err, resilience.ErrOpen) {
		// skipped without calling the opener
	}

A closed breaker counts consecutive failures and opens at Threshold. After
Cooldown it lets exactly one trial call through: success closes it, failure
opens it again. Cancelled or timed out contexts are not counted.
*/
package resilience
