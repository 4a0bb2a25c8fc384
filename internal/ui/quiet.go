package ui

// quietPresenter consumes events but produces no output.
type quietPresenter struct{}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
		// Decision events are sent with back-pressure; keep receiving.
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
