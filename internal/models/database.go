package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// CreateJob creates a new job history record
func (db *Database) CreateJob(job *Job) error {
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), job)
}

// UpdateJob updates an existing job record
func (db *Database) UpdateJob(job *Job) error {
	job.UpdatedAt = time.Now()
	return db.store.Update(job.ID, job)
}

// GetJobByID retrieves a job by ID
func (db *Database) GetJobByID(id uint64) (*Job, error) {
	var job Job
	err := db.store.Get(id, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetAllJobs retrieves all job records
func (db *Database) GetAllJobs() ([]*Job, error) {
	var jobs []*Job
	err := db.store.Find(&jobs, nil)
	return jobs, err
}

// GetJobsByStatus retrieves all jobs with a specific status
func (db *Database) GetJobsByStatus(status JobStatus) ([]*Job, error) {
	var jobs []*Job
	err := db.store.Find(&jobs, bolthold.Where("Status").Eq(status))
	return jobs, err
}

// GetJobByFolder retrieves the most recent job that wrote the given folder
func (db *Database) GetJobByFolder(folder string) (*Job, error) {
	var jobs []*Job
	err := db.store.Find(&jobs, bolthold.Where("Folder").Eq(folder))
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, bolthold.ErrNotFound
	}
	return jobs[len(jobs)-1], nil
}
