package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"stadiumsim/simulator"
)

var (
	// Prometheus metrics (gauges)
	promMetrics = struct {
		fansInStadium  prometheus.Gauge
		fillRatio      prometheus.Gauge
		securityQueue  prometheus.Gauge
		turnstileQueue prometheus.Gauge
		vendorQueue    prometheus.Gauge
		exitQueue      prometheus.Gauge
		securityUtil   prometheus.Gauge
		turnstileUtil  prometheus.Gauge
		vendorUtil     prometheus.Gauge
		exitUtil       prometheus.Gauge
		arrivalRate    prometheus.Gauge
		exitRate       prometheus.Gauge
		parkingFree    prometheus.Gauge
		controlActions prometheus.Gauge
	}{
		fansInStadium: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_fans_inside",
			Help: "Fans currently inside the stadium",
		}),
		fillRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_fill_ratio",
			Help: "Seated fans as a fraction of total population",
		}),
		securityQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_security_queue",
			Help: "Fans queued at security screening",
		}),
		turnstileQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_turnstile_queue",
			Help: "Fans queued at the turnstiles",
		}),
		vendorQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_vendor_queue",
			Help: "Fans queued at concession vendors",
		}),
		exitQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_exit_queue",
			Help: "Fans queued at the exit gates",
		}),
		securityUtil: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_security_utilization",
			Help: "Security lane utilization (0-1)",
		}),
		turnstileUtil: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_turnstile_utilization",
			Help: "Turnstile utilization (0-1)",
		}),
		vendorUtil: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_vendor_utilization",
			Help: "Vendor stand utilization (0-1)",
		}),
		exitUtil: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_exit_utilization",
			Help: "Exit gate utilization (0-1)",
		}),
		arrivalRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_arrival_rate",
			Help: "Fan arrivals per virtual minute",
		}),
		exitRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_exit_rate",
			Help: "Fan exits per virtual minute",
		}),
		parkingFree: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_parking_free",
			Help: "Free parking spots",
		}),
		controlActions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stadium_control_actions_total",
			Help: "Control actions taken so far this run",
		}),
	}
)

func initPrometheusMetrics() {
	prometheus.MustRegister(
		promMetrics.fansInStadium,
		promMetrics.fillRatio,
		promMetrics.securityQueue,
		promMetrics.turnstileQueue,
		promMetrics.vendorQueue,
		promMetrics.exitQueue,
		promMetrics.securityUtil,
		promMetrics.turnstileUtil,
		promMetrics.vendorUtil,
		promMetrics.exitUtil,
		promMetrics.arrivalRate,
		promMetrics.exitRate,
		promMetrics.parkingFree,
		promMetrics.controlActions,
	)
}

func updatePrometheusMetrics(snap simulator.Snapshot, state *simState) {
	promMetrics.fansInStadium.Set(float64(snap.FansInStadium))
	promMetrics.fillRatio.Set(snap.FillRatio)
	promMetrics.securityQueue.Set(float64(snap.SecurityQueue))
	promMetrics.turnstileQueue.Set(float64(snap.TurnstileQueue))
	promMetrics.vendorQueue.Set(float64(snap.VendorQueue))
	promMetrics.exitQueue.Set(float64(snap.ExitQueue))
	promMetrics.securityUtil.Set(snap.SecurityUtilization)
	promMetrics.turnstileUtil.Set(snap.TurnstileUtilization)
	promMetrics.vendorUtil.Set(snap.VendorUtilization)
	promMetrics.exitUtil.Set(snap.ExitUtilization)
	promMetrics.arrivalRate.Set(snap.ArrivalRate)
	promMetrics.exitRate.Set(snap.ExitRate)
	promMetrics.parkingFree.Set(float64(snap.ParkingFree))
	promMetrics.controlActions.Set(float64(len(state.actions())))
}
