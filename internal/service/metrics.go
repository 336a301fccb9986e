package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opCreate  = "create"
	opUpdate  = "update"
	opDelete  = "delete"
	opUnknown = "unknown"

	resultSuccess  = "success"
	resultFailure  = "failure"
	resultRejected = "rejected"
)

var dispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_address_dispatch_total",
		Help: "Address form submissions by selected operation and result",
	},
	[]string{"operation", "result"},
)
