package moc

import (
	log "github.com/sirupsen/logrus"
)

// Warning is one recoverable solver event: a bounded iteration that ran out
// of budget and handed back its last iterate. Warnings accumulate for the
// run and never interrupt it.
type Warning struct {
	Component  string  // "junction", "fan", "boundary"
	ID         string  // node, fan or segment identifier
	Time       float64 // simulation time [s]
	Iterations int
	Detail     string
}

// Collector gathers warnings and mirrors them to the structured log.
type Collector struct {
	Warnings []Warning
	logger   *log.Logger
}

// NewCollector uses the given logger, or the logrus standard logger when nil.
func NewCollector(logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Collector{logger: logger}
}

// Add records and logs a warning.
func (c *Collector) Add(w Warning) {
	c.Warnings = append(c.Warnings, w)
	c.logger.WithFields(log.Fields{
		"component":  w.Component,
		"id":         w.ID,
		"time":       w.Time,
		"iterations": w.Iterations,
	}).Warn(w.Detail)
}

// Count returns the number of accumulated warnings.
func (c *Collector) Count() int {
	return len(c.Warnings)
}

// IterResult is the outcome of one bounded iterative solve. Non-convergence
// is data, not an error: the caller logs it and continues with Value.
type IterResult struct {
	Value      float64
	Converged  bool
	Iterations int
	Diagnostic string
}
