package domain

import "time"

// IsAlert reports whether e warrants an immediate notification at now:
// close enough, strong enough, and recent. Events stamped after now are
// rejected rather than treated as fresh.
//
// Every comparison must hold, so a NaN distance or threshold never matches.
func IsAlert(e Event, observer Observer, th Thresholds, now time.Time) bool {
	age := now.Sub(e.OccurredAt)
	return observer.DistanceKm(e) <= th.MaxDistanceKm &&
		e.Magnitude >= th.MinMagnitude &&
		age >= 0 && age <= th.RecencyWindow
}

// FilterAlerts returns the events that pass IsAlert, in their original order.
func FilterAlerts(events []Event, observer Observer, th Thresholds, now time.Time) []Event {
	var alerts []Event
	for _, e := range events {
		if IsAlert(e, observer, th, now) {
			alerts = append(alerts, e)
		}
	}
	return alerts
}
