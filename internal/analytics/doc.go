// Package analytics derives health analytics from a user's recording history.
//
// Everything here is a pure function over value snapshots: the store hands over a
// []models.Recording, the functions return freshly allocated results and never
// mutate their input. Callers may use them from any number of goroutines.
package analytics
