package signer

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK      = "ok"
	outcomeValid   = "valid"
	outcomeInvalid = "invalid"
)

type instrumented struct {
	next       Signer
	operations *prometheus.CounterVec
}

// Instrument wraps s and counts every operation in
// signgate_signer_operations_total, labelled by operation (sign, verify) and
// outcome (ok, valid, invalid). The counter is registered with reg.
//
//nolint:ireturn // decorator keeps the Signer abstraction
func Instrument(s Signer, reg prometheus.Registerer) (Signer, error) {
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signgate",
			Subsystem: "signer",
			Name:      "operations_total",
			Help:      "Total number of signer operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	if err := reg.Register(operations); err != nil {
		return nil, err
	}

	return &instrumented{next: s, operations: operations}, nil
}

func (i *instrumented) Sign(message []byte) []byte {
	sig := i.next.Sign(message)
	i.operations.WithLabelValues("sign", outcomeOK).Inc()

	return sig
}

func (i *instrumented) Verify(message, signature []byte) bool {
	ok := i.next.Verify(message, signature)

	outcome := outcomeInvalid
	if ok {
		outcome = outcomeValid
	}

	i.operations.WithLabelValues("verify", outcome).Inc()

	return ok
}
