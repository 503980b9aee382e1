package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier sends desktop notifications through notify-send
type Notifier struct {
	enabled bool
	run     func(name string, args ...string) error
}

// NewNotifier creates a new notifier
func NewNotifier() *Notifier {
	return NewCommandNotifier(func(name string, args ...string) error {
		return exec.Command(name, args...).Run()
	})
}

// NewCommandNotifier creates a notifier that hands notify-send arguments to run
func NewCommandNotifier(run func(name string, args ...string) error) *Notifier {
	return &Notifier{enabled: true, run: run}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// Args returns the notify-send arguments for a notification
func Args(notification Notification) []string {
	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Timeout in milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "stint")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	return args
}

// Send sends a desktop notification
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}
	return n.run("notify-send", Args(notification)...)
}

// SendSaveFailed reports a save that did not reach the store
func (n *Notifier) SendSaveFailed(err error) error {
	return n.Send(Notification{
		Title:   "Save failed",
		Body:    fmt.Sprintf("Tracked time could not be written: %v", err),
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "dialog-error-symbolic",
	})
}

// SendTimersRunning reminds that timers were still running at shutdown
func (n *Notifier) SendTimersRunning(count int) error {
	body := "1 timer was running and has been saved"
	if count != 1 {
		body = fmt.Sprintf("%d timers were running and have been saved", count)
	}
	return n.Send(Notification{
		Title:   "Timers saved",
		Body:    body,
		Urgency: UrgencyLow,
		Timeout: 5 * time.Second,
		Icon:    "appointment-soon-symbolic",
	})
}
