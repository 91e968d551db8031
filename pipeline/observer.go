package pipeline

import (
	"time"

	"github.com/robinvdvleuten/beancount-validate/validation"
)

// PassEvent describes one pass of a run. Errors and Duration are only set
// on PassFinished.
type PassEvent struct {
	Index    int
	Total    int
	Pass     validation.Pass
	Errors   []*validation.Error
	Duration time.Duration
}

// Observer is notified around every pass. It cannot influence the run.
type Observer interface {
	PassStarted(PassEvent)
	PassFinished(PassEvent)
}

// ObserverFuncs adapts plain functions to an Observer. Nil fields are
// ignored.
type ObserverFuncs struct {
	Started  func(PassEvent)
	Finished func(PassEvent)
}

func (o ObserverFuncs) PassStarted(e PassEvent) {
	if o.Started != nil {
		o.Started(e)
	}
}

func (o ObserverFuncs) PassFinished(e PassEvent) {
	if o.Finished != nil {
		o.Finished(e)
	}
}

type multiObserver []Observer

func (m multiObserver) PassStarted(e PassEvent) {
	for _, o := range m {
		o.PassStarted(e)
	}
}

func (m multiObserver) PassFinished(e PassEvent) {
	for _, o := range m {
		o.PassFinished(e)
	}
}

type nopObserver struct{}

func (nopObserver) PassStarted(PassEvent)  {}
func (nopObserver) PassFinished(PassEvent) {}
