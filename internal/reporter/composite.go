package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) RunStarted(config RunConfig) {
	for _, r := range c.reporters {
		r.RunStarted(config)
	}
}

func (c *CompositeReporter) CTUStarted(info CTUInfo) {
	for _, r := range c.reporters {
		r.CTUStarted(info)
	}
}

func (c *CompositeReporter) Verdict(event VerdictEvent) {
	for _, r := range c.reporters {
		r.Verdict(event)
	}
}

func (c *CompositeReporter) CUDecision(event CUDecisionEvent) {
	for _, r := range c.reporters {
		r.CUDecision(event)
	}
}

func (c *CompositeReporter) DatasetProgress(progress DatasetProgress) {
	for _, r := range c.reporters {
		r.DatasetProgress(progress)
	}
}

func (c *CompositeReporter) RunComplete(summary RunSummary) {
	for _, r := range c.reporters {
		r.RunComplete(summary)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
