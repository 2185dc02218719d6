// Package mock publishes canned course notifications on a timer so the
// channel and the TUI can be exercised without the rest of the platform.
package mock

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/softwarechaser9/elearning-notify/internal/hub"
	"github.com/softwarechaser9/elearning-notify/internal/notify"
)

var templates = []notify.Notification{
	{
		Kind:        notify.KindMaterial,
		Title:       `New material added to "Intro to Databases"`,
		Message:     `"Week 4: Indexing" has been added to your course "Intro to Databases". Check it out now!`,
		IsImportant: true,
	},
	{
		Kind:    notify.KindEnrollment,
		Title:   `New student enrolled in "Operating Systems"`,
		Message: `maria.k has enrolled in your course "Operating Systems".`,
	},
	{
		Kind:    notify.KindFeedback,
		Title:   `New feedback on "Distributed Systems"`,
		Message: `A student left a 5-star review on your course.`,
	},
	{
		Kind:        notify.KindAnnouncement,
		Title:       `Platform maintenance on Sunday`,
		Message:     `The platform will be briefly unavailable on Sunday at 03:00 UTC.`,
		IsImportant: true,
	},
	{
		Kind:    notify.KindSystem,
		Title:   `Assignment deadline approaching`,
		Message: `"Problem Set 3" is due in 48 hours.`,
	},
}

// Generator publishes rotating sample notifications to one recipient.
type Generator struct {
	hub       *hub.Hub
	recipient string
	interval  time.Duration
}

func NewGenerator(h *hub.Hub, recipient string, interval time.Duration) *Generator {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Generator{hub: h, recipient: recipient, interval: interval}
}

// Start publishes until the context is cancelled.
func (g *Generator) Start(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	i := rand.Intn(len(templates))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := templates[i%len(templates)]
			i++
			if err := g.hub.Publish(g.recipient, n); err != nil {
				log.Printf("mock: publish: %v", err)
			}
		}
	}
}
