package generation

import "encoding/json"

// TaskType discriminates generation requests.
type TaskType string

const (
	TaskBio                TaskType = "bio"
	TaskHeadline           TaskType = "headline"
	TaskProjectDescription TaskType = "project-description"
	TaskResumeParse        TaskType = "resume-parse"
	TaskPortfolioConfig    TaskType = "portfolio-config"
)

// TaskParams are the fixed generation parameters of a task.
type TaskParams struct {
	MaxTokens   int
	Temperature float64
	MinLength   int
	JSONMode    bool
}

var taskParams = map[TaskType]TaskParams{
	TaskBio:                {MaxTokens: 500, Temperature: 0.7, MinLength: MinLengthText},
	TaskHeadline:           {MaxTokens: 100, Temperature: 0.7, MinLength: MinLengthText},
	TaskProjectDescription: {MaxTokens: 400, Temperature: 0.7, MinLength: MinLengthText},
	TaskResumeParse:        {MaxTokens: 4000, Temperature: 0.3, MinLength: MinLengthStructured, JSONMode: true},
	TaskPortfolioConfig:    {MaxTokens: 6000, Temperature: 0.4, MinLength: MinLengthStructured, JSONMode: true},
}

// ParamsFor returns the parameters for task.
func ParamsFor(task TaskType) (TaskParams, bool) {
	p, ok := taskParams[task]
	return p, ok
}

type BioInput struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
}

type HeadlineInput struct {
	Title  string   `json:"title"`
	Skills []string `json:"skills"`
}

type ProjectInput struct {
	Name         string   `json:"name"`
	Technologies []string `json:"technologies"`
	Summary      string   `json:"summary"`
}

type PortfolioInput struct {
	CVText      string          `json:"cvText"`
	GitHubData  json.RawMessage `json:"githubData"`
	Preferences json.RawMessage `json:"preferences"`
}

// CVData is the structured result of parsing a CV.
type CVData struct {
	Name       string       `json:"name"`
	Headline   string       `json:"headline"`
	Bio        string       `json:"bio"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Location   string       `json:"location"`
	Website    string       `json:"website"`
	LinkedIn   string       `json:"linkedin"`
	GitHub     string       `json:"github"`
	Skills     []string     `json:"skills"`
	Projects   []Project    `json:"projects"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
}

type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// PortfolioConfig is the generated layout for a portfolio page.
type PortfolioConfig struct {
	Theme    Theme     `json:"theme"`
	Sections []Section `json:"sections"`
}

type Theme struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	FontFamily     string `json:"fontFamily"`
	Layout         string `json:"layout"`
}

// Section content is kept raw; its shape depends on Type.
type Section struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Order   int             `json:"order"`
	Visible bool            `json:"visible"`
	Content json.RawMessage `json:"content,omitempty"`
}
