// Command seed fills a development database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	employers := flag.Int("employers", defaults.Employers, "Number of employers (each with one company) to create")
	jobsEach := flag.Int("jobs", defaults.JobsPerEmployer, "Jobs posted per employer")
	seekers := flag.Int("seekers", defaults.JobSeekers, "Number of job seekers to create")
	appsEach := flag.Int("applications", defaults.ApplicationsEach, "Applications submitted per job seeker")
	clean := flag.Bool("clean", false, "Delete existing data before seeding")
	randSeed := flag.Int64("rand-seed", 0, "Seed for reproducible data (0 uses the clock)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d employers x %d jobs, %d seekers x %d applications, clean=%v",
		*employers, *jobsEach, *seekers, *appsEach, *clean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	sum, err := seed.Seed(ctx, db, seed.Options{
		Employers:        *employers,
		JobsPerEmployer:  *jobsEach,
		JobSeekers:       *seekers,
		ApplicationsEach: *appsEach,
		Clean:            *clean,
		RandSeed:         *randSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Created %d categories, %d employers, %d jobs, %d job seekers, %d applications",
		sum.Categories, sum.Employers, sum.Jobs, sum.JobSeekers, sum.Applications)
	log.Printf("📧 All demo users have the password: %s", seed.DemoPassword)
}
