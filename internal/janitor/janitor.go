// Package janitor runs the nightly cleanup: purging soft-deleted projects
// past retention and cancelling stale pending invites.
package janitor

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	collabrepo "github.com/jazbelrose/mylg-backend/internal/collab/repository"
	projectrepo "github.com/jazbelrose/mylg-backend/internal/projects/repository"
)

const (
	projectRetention = 30 * 24 * time.Hour
	inviteMaxAge     = 14 * 24 * time.Hour
	jobTimeout       = 5 * time.Minute
)

type Janitor struct {
	projects *projectrepo.Repo
	invites  *collabrepo.InviteRepository
	cron     *cron.Cron
}

func New(projects *projectrepo.Repo, invites *collabrepo.InviteRepository) *Janitor {
	return &Janitor{
		projects: projects,
		invites:  invites,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start schedules the nightly run (12:00 AM).
func (j *Janitor) Start() {
	_, err := j.cron.AddFunc("0 0 0 * * *", j.RunOnce)
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Janitor started (running nightly at 12:00AM)")
	j.cron.Start()
}

// Stop halts the scheduler.
func (j *Janitor) Stop() {
	j.cron.Stop()
}

// RunOnce executes one cleanup pass.
func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	purged, err := j.projects.PurgeDeleted(ctx, projectRetention)
	if err != nil {
		log.Printf("[janitor] project purge failed: %v", err)
	} else if purged > 0 {
		log.Printf("[janitor] purged %d soft-deleted projects", purged)
	}

	expired, err := j.invites.ExpirePending(ctx, inviteMaxAge)
	if err != nil {
		log.Printf("[janitor] invite expiry failed: %v", err)
	} else if expired > 0 {
		log.Printf("[janitor] cancelled %d stale invites", expired)
	}
}
