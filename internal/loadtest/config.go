package loadtest

import (
	"time"

	"github.com/okian/salarycast/internal/domain/profile"
	"github.com/okian/salarycast/internal/domain/types"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumProfiles  int           // Number of profiles to generate and submit
	InvalidRatio float64       // Share of profiles deliberately broken
	BatchSize    int           // Profiles per /predict/batch call; 0 disables batches
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Seed         uint64        // Seed for profile generation
	OutputFile   string        // Optional file for the generated profiles
	Verbose      bool          // Log every unexpected response
}

// Case is one generated request together with the outcome it should have.
type Case struct {
	Profile    profile.Profile `json:"profile"`
	WantStatus int             `json:"want_status"`
	WantCode   string          `json:"want_code,omitempty"`
}

// Catalog is the service's view of its features: order and valid options.
type Catalog struct {
	ModelName string
	// Model lists the model's features in vector order.
	Model []string
	// Features is Model plus any required profile field it lacks.
	Features []string
	Options  map[string][]types.Category
}

// Stats holds run statistics.
type Stats struct {
	Generated  int           `json:"generated"`
	Submitted  int           `json:"submitted"`
	Succeeded  int           `json:"succeeded"`
	Rejected   int           `json:"rejected"`
	Unexpected int           `json:"unexpected"`
	Batches    int           `json:"batches"`
	BatchItems int           `json:"batch_items"`
	Mismatched int           `json:"batch_mismatched"`
	MinSalary  float64       `json:"min_salary"`
	MaxSalary  float64       `json:"max_salary"`
	Duration   time.Duration `json:"duration"`
}
