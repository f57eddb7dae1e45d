package board

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"example.com/activityboard/internal/apiclient"
)

const (
	actionRefresh    = "refresh"
	actionSignup     = "signup"
	actionUnregister = "unregister"

	outcomeOK        = "ok"
	outcomeRejected  = "rejected"
	outcomeTransport = "transport_error"
	outcomeDeclined  = "declined"
)

var actionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "activityboard",
	Subsystem: "board",
	Name:      "actions_total",
	Help:      "Number of board actions grouped by action and outcome.",
}, []string{"action", "outcome"})

func init() {
	prometheus.MustRegister(actionCounter)
}

func recordAction(action, outcome string) {
	actionCounter.WithLabelValues(action, outcome).Inc()
}

func outcomeOf(err error) string {
	var rejection *apiclient.RejectionError
	if errors.As(err, &rejection) {
		return outcomeRejected
	}
	return outcomeTransport
}
