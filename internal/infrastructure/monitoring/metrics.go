package monitoring

import (
	"lending-engine/internal/domain/authz"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authzDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authz_decisions_total",
		Help: "Authorization decisions by operation, outcome and denial reason.",
	}, []string{"operation", "outcome", "reason"})

	offersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loan_offers_created_total",
		Help: "Loan offers created, by initial status.",
	}, []string{"status"})

	paymentRecomputationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_payment_recomputations_total",
		Help: "Monthly payment recomputations, by trigger (update, sweep).",
	}, []string{"trigger"})

	integrityRepairsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offer_integrity_repairs_total",
		Help: "Offers whose stored monthly payment drifted and was repaired by the sweep.",
	})
)

func RecordAuthzDecision(operation string, d authz.Decision) {
	outcome := "allow"
	if !d.Allowed {
		outcome = "deny"
	}
	authzDecisionsTotal.WithLabelValues(operation, outcome, string(d.Reason)).Inc()
}

func RecordOfferCreated(status string) {
	offersCreatedTotal.WithLabelValues(status).Inc()
}

func RecordPaymentRecomputation(trigger string) {
	paymentRecomputationsTotal.WithLabelValues(trigger).Inc()
}

func RecordIntegrityRepair() {
	integrityRepairsTotal.Inc()
}
