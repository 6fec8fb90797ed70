// Package notifications sends ntfy push notifications for pipeline
// milestones. Per-category toggles in configuration decide which events
// go out; an unset topic disables the service entirely.
package notifications
