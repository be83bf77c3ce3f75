package columns

// Logical feature names known to the pipeline.
const (
	Education         = "education"
	JobRole           = "job_role"
	Location          = "location"
	CompanySize       = "company_size"
	EmploymentType    = "employment_type"
	ExperienceLevel   = "experience_level"
	RemoteRatio       = "remote_ratio"
	CompanyLocation   = "company_location"
	EmployeeResidence = "employee_residence"
	WorkYear          = "work_year"
)

// Alias lists acceptable source-column spellings for one logical feature,
// highest priority first.
type Alias struct {
	Logical    string
	Candidates []string
}

// DefaultAliases returns the curated alias table in resolution order.
func DefaultAliases() []Alias {
	return []Alias{
		{Education, []string{"Education", "education", "Education Level", "education_level", "degree", "Degree"}},
		{JobRole, []string{"Job Role", "job_role", "Job Title", "job_title", "Position", "position", "Role", "role"}},
		{Location, []string{"Location", "location", "City", "city", "Region", "region", "Country", "country"}},
		{CompanySize, []string{"Company Size", "company_size", "companySize", "company size"}},
		{EmploymentType, []string{"Employment Type", "employment_type", "employmentType"}},
		{ExperienceLevel, []string{"Experience Level", "experience_level", "experienceLevel"}},
		{RemoteRatio, []string{"Remote Ratio", "remote_ratio"}},
		{CompanyLocation, []string{"Company Location", "company_location"}},
		{EmployeeResidence, []string{"Employee Residence", "employee_residence", "Residence"}},
		{WorkYear, []string{"Work Year", "work_year", "Year"}},
	}
}

// Known reports whether name is one of the curated logical features.
func Known(name string) bool {
	for _, a := range DefaultAliases() {
		if a.Logical == name {
			return true
		}
	}
	return false
}
