// Package lifecycle decides who may do what to an incident and applies the
// resulting state transitions.
//
// Everything here is pure: callers pass the verified identity, the incident
// as loaded from storage and the current time, and get back either an
// authorization/validation error (with the incident untouched) or the
// mutated incident plus the history entry that must be persisted with it.
//
// Incident status moves freely between Pending, In Review and Resolved;
// only the actor's role and assignment gate a change. Resolved is not
// terminal.
package lifecycle
