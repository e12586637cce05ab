package httptransport

import "expvar"

var (
	metricWagerPlaceTotal   = expvar.NewInt("wager_place_total")
	metricWagerPlaceErrors  = expvar.NewInt("wager_place_errors_total")
	metricWagerSettleTotal  = expvar.NewInt("wager_settle_total")
	metricWagerSettleErrors = expvar.NewInt("wager_settle_errors_total")
	metricWagerCancelTotal  = expvar.NewInt("wager_cancel_total")
	metricWagerCancelErrors = expvar.NewInt("wager_cancel_errors_total")

	metricEventSSEConnectionsTotal  = expvar.NewInt("event_sse_connections_total")
	metricEventSSEConnectionsActive = expvar.NewInt("event_sse_connections_active")
)
