package domain

import "time"

// JobStatus is the lifecycle state of a posted job.
type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in-progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobOpen, JobInProgress, JobCompleted, JobCancelled:
		return true
	}
	return false
}

// Budget is the rate range an employer is offering.
type Budget struct {
	MinRate  float64 `json:"min_rate"  bson:"min_rate"`
	MaxRate  float64 `json:"max_rate"  bson:"max_rate"`
	IsHourly bool    `json:"is_hourly" bson:"is_hourly"`
}

// Job is a daily-wage job posted by an employer.
type Job struct {
	ID          string    `json:"id"          bson:"_id"`
	Title       string    `json:"title"       bson:"title"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category"    bson:"category"`
	Skills      []string  `json:"skills"      bson:"skills"`
	Location    string    `json:"location"    bson:"location"`
	Budget      Budget    `json:"budget"      bson:"budget"`
	Status      JobStatus `json:"status"      bson:"status"`
	EmployerID  string    `json:"employer_id" bson:"employer_id"`
	IsUrgent    bool      `json:"is_urgent"   bson:"is_urgent"`
	CreatedAt   time.Time `json:"created_at"  bson:"created_at"`
}
